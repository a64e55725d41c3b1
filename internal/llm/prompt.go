package llm

import "strings"

// BuildExtractionPrompt composes the structuring instruction for one file's
// recognized text. The model is asked for a bare JSON array so the lenient
// parser can pull it out of any surrounding prose.
func BuildExtractionPrompt(text, filename string) string {
	var b strings.Builder
	b.WriteString("Extract event data from this OCR text and return as JSON array.\n\n")
	b.WriteString("Text: ")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString(`IMPORTANT INSTRUCTIONS:
1. Calculate DURATION: If you have start_time and end_time, calculate the duration in hours and minutes (e.g., "2h 30m", "1h 15m", "45m")
2. For durations ABOVE 24 hours: Use days and hours format (e.g., "2d 4h 30m", "1d 12h", "3d 2h 15m")
3. Make EVENT names descriptive and professional (e.g., "Cargo Loading Operation", "Ship Maintenance Activity", "Crew Briefing Session")
4. Make DESCRIPTION more detailed and meaningful, explaining what actually happened during the event
5. Use proper date formats: YYYY-MM-DD HH:MM for start_time and end_time
6. Extract all relevant information about ships, cargo, layoff times, etc.
7. For LAYOFF_TIME: Look for any time periods that could be layoff, break, rest, or pause times. Format it the same way as duration (e.g., "2h 0m", "30m"). Only use "N/A" if there's absolutely no time information that could be related to layoff/break periods.
8. For SHIP_CARGO: If no ship or cargo information is available, use "N/A"

Return ONLY a JSON array of objects with these exact fields:
- event: descriptive event name (not just short codes)
- day: day of week
- start_time: start time with date (YYYY-MM-DD HH:MM format)
- end_time: end time with date (YYYY-MM-DD HH:MM format)
- duration: calculated duration from start and end times
- ship_cargo: ship/cargo information or "N/A" if not available
- layoff_time: any layoff/break/rest time period in duration format or "N/A" if none found
- description: detailed description of what happened
- filename: "`)
	b.WriteString(filename)
	b.WriteString(`"

If no events found, return empty array [].`)
	return b.String()
}
