package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sourabsb/tbi-hackathon/constants"
	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/job"
	"github.com/Sourabsb/tbi-hackathon/internal/metrics"
	"github.com/Sourabsb/tbi-hackathon/internal/pipeline"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "SoF Event Extractor API",
		"version": "2.0.0",
		"status":  "running",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"ocr_configured": s.cfg.OCRConfigured(),
		"llm_configured": s.cfg.LLMConfigured(),
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, common.NewAppError("BAD_MULTIPART", "No files provided", common.ErrInvalidInput))
		return
	}
	parts := form.File["files"]

	metas := make([]job.FileMeta, 0, len(parts))
	for _, p := range parts {
		ct := p.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			if guessed := constants.ContentTypeForFilename(p.Filename); guessed != "" {
				ct = guessed
			}
		}
		metas = append(metas, job.FileMeta{Filename: p.Filename, ContentType: ct, Size: p.Size})
	}
	if err := job.ValidateSubmission(metas); err != nil {
		fail(c, err)
		return
	}

	inputs := make([]pipeline.FileInput, 0, len(parts))
	filenames := make([]string, 0, len(parts))
	for i, p := range parts {
		f, err := p.Open()
		if err != nil {
			fail(c, fmt.Errorf("open upload %s: %w", p.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			fail(c, fmt.Errorf("read upload %s: %w", p.Filename, err))
			return
		}
		inputs = append(inputs, pipeline.FileInput{
			Filename:    p.Filename,
			ContentType: metas[i].ContentType,
			Data:        data,
		})
		filenames = append(filenames, p.Filename)
	}

	doc := &job.Document{
		JobID:      job.NewID(),
		Status:     constants.JobStatusQueued,
		Progress:   0,
		Message:    "Files uploaded, processing started",
		TotalFiles: len(inputs),
		Filenames:  filenames,
	}
	if err := s.store.SaveStatus(c.Request.Context(), doc); err != nil {
		fail(c, err)
		return
	}

	if enhanced := c.PostForm("use_enhanced_processing"); enhanced != "" {
		s.logger.Info("upload.enhanced_flag", "job_id", doc.JobID, "value", enhanced)
	}

	metrics.JobsSubmitted.Inc()
	// The request context dies with the response; the pipeline outlives it.
	go s.pipe.Run(context.Background(), doc, inputs)

	c.JSON(http.StatusOK, gin.H{
		"job_id":      doc.JobID,
		"total_files": doc.TotalFiles,
		"message":     "Files uploaded successfully. Processing started.",
	})
}

func (s *Server) handleListJobs(c *gin.Context) {
	docs, err := s.store.ListStatuses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	jobs := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, gin.H{
			"job_id":      d.JobID,
			"status":      d.Status,
			"progress":    d.Progress,
			"message":     d.Message,
			"created_at":  formatCreatedAt(d.CreatedAt),
			"total_files": d.TotalFiles,
			"filename":    d.FirstFilename(),
			"filenames":   d.Filenames,
		})
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) handleResult(c *gin.Context) {
	jobID := c.Param("job_id")
	ctx := c.Request.Context()

	doc, err := s.store.LoadStatus(ctx, jobID)
	if err != nil {
		fail(c, common.NewAppError("JOB_NOT_FOUND", "Job not found", common.ErrNotFound))
		return
	}

	switch doc.Status {
	case constants.JobStatusProcessing:
		c.JSON(http.StatusOK, gin.H{
			"job_id":      jobID,
			"status":      doc.Status,
			"progress":    doc.Progress,
			"message":     doc.Message,
			"total_files": doc.TotalFiles,
			"filename":    doc.FirstFilename(),
			"filenames":   doc.Filenames,
		})
		return
	case constants.JobStatusFailed:
		c.JSON(http.StatusOK, gin.H{
			"job_id":      jobID,
			"status":      doc.Status,
			"message":     doc.Message,
			"total_files": doc.TotalFiles,
			"filename":    doc.FirstFilename(),
			"filenames":   doc.Filenames,
			"error":       doc.Message,
		})
		return
	}

	res, err := s.store.LoadResult(ctx, jobID)
	if err != nil {
		fail(c, common.NewAppError("RESULTS_NOT_FOUND", "Results not found", common.ErrNotFound))
		return
	}

	// Older deployments wrote JSON under the .csv extension; fix it on read.
	if err := s.store.RepairResultCSV(ctx, jobID, res.Table); err != nil {
		s.logger.Warn("result.csv_repair_failed", "job_id", jobID, "error", err)
	}

	events := make([]map[string]any, 0, len(res.Table))
	for _, r := range res.Table {
		events = append(events, r.Render(record.ProfileLegacy))
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"status":      constants.JobStatusCompleted,
		"events":      events,
		"total_files": doc.TotalFiles,
		"filename":    doc.FirstFilename(),
		"filenames":   doc.Filenames,
		"message":     doc.Message,
		"created_at":  formatCreatedAt(doc.CreatedAt),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	jobID := c.Param("job_id")

	format := c.Query("format")
	if format == "" {
		format = "json"
	}
	// The frontend sends ?type=csv; it wins over format.
	if alias := c.Query("type"); alias != "" {
		format = alias
	}

	var override []record.Record
	var body struct {
		Events []map[string]any `json:"events"`
	}
	// The body is optional and may be absent or non-JSON.
	if err := c.ShouldBindJSON(&body); err == nil && len(body.Events) > 0 {
		override = record.NormalizeAll(body.Events)
	}

	doc, err := s.exporter.Export(c.Request.Context(), jobID, format, override)
	if err != nil {
		fail(c, err)
		return
	}

	if doc.Attachment {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// formatCreatedAt renders timestamps the way the status files store them. A
// zero time renders as "" for documents written before timestamps existed.
func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// fail maps an error chain to the {"detail": ...} error body.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	detail := err.Error()
	var ae *common.AppError
	if errors.As(err, &ae) {
		detail = ae.Message
	}
	c.JSON(status, gin.H{"detail": detail})
}
