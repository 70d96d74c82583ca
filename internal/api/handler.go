// Package api exposes the attendance core over HTTP. Handlers convert
// domain errors into status codes; everything unexpected is logged
// with detail and reported as a generic 500.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"latecomer/internal/attendance"
	"latecomer/internal/clock"
	"latecomer/internal/dispatch"
	"latecomer/internal/export"
	"latecomer/internal/metrics"
	"latecomer/internal/report"
	"latecomer/internal/store"
)

// AttendanceService is the classifier surface the handlers call.
type AttendanceService interface {
	Mark(ctx context.Context, rollNo string) (attendance.Record, error)
	Register(ctx context.Context, s attendance.Student) (attendance.Student, error)
	Students(ctx context.Context) ([]attendance.Student, error)
	Remove(ctx context.Context, rollNo string) error
}

// Reports is the aggregation surface the handlers call.
type Reports interface {
	TodayDepartmentCounts(ctx context.Context, now time.Time) ([]report.DeptCount, error)
	DepartmentReport(ctx context.Context, department, batch string, start, end time.Time) ([]report.Row, error)
	StudentReport(ctx context.Context, rollNo string, start, end time.Time) (report.StudentReport, error)
	FilteredAttendance(ctx context.Context, start, end time.Time) ([]report.FilteredRow, error)
}

// PipelineRunner forces the scheduled report pipelines to run now.
type PipelineRunner interface {
	RunNow(ctx context.Context) []dispatch.Result
}

// Handler carries the handlers' dependencies.
type Handler struct {
	svc     AttendanceService
	reports Reports
	runner  PipelineRunner
	cache   *store.Redis
	logger  *zap.Logger
}

// NewHandler wires the handler. cache may be nil.
func NewHandler(svc AttendanceService, reports Reports, runner PipelineRunner, cache *store.Redis, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, reports: reports, runner: runner, cache: cache, logger: logger}
}

// Routes registers all API routes on the engine.
func (h *Handler) Routes(r gin.IRouter) {
	att := r.Group("/api/attendance")
	att.POST("/mark", h.markAttendance)
	att.GET("/department-count", h.departmentCounts)
	att.GET("/department-report", h.departmentReport)
	att.GET("/department-report/export", h.exportDepartmentReport)
	att.GET("/report", h.studentReport)
	att.GET("/filter", h.filteredAttendance)
	att.POST("/test-email", h.testEmail)

	students := r.Group("/api/students")
	students.POST("", h.createStudent)
	students.GET("", h.listStudents)
	students.DELETE("/:roll", h.deleteStudent)
}

func (h *Handler) markAttendance(c *gin.Context) {
	var req struct {
		RollNo string `json:"roll_no"`
	}
	// A missing body is the same as a missing roll number.
	_ = c.ShouldBindJSON(&req)

	rec, err := h.svc.Mark(c.Request.Context(), req.RollNo)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrRollRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Roll Number is required"})
		case errors.Is(err, attendance.ErrStudentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		default:
			h.logger.Error("mark attendance failed", zap.String("roll_no", req.RollNo), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	metrics.ScansTotal.WithLabelValues(rec.Status).Inc()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Attendance marked successfully!",
		"record": gin.H{
			"roll_no":    rec.RollNo,
			"name":       rec.Name,
			"department": rec.Department,
			"date":       rec.MarkedAt,
			"status":     rec.Status,
		},
	})
}

const countsCacheTTL = 30 * time.Second

func (h *Handler) departmentCounts(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()
	cacheKey := "latecomer:department-count:" + clock.DateKey(now)

	if cached := h.cache.GetCached(ctx, cacheKey); cached != "" {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	counts, err := h.reports.TodayDepartmentCounts(ctx, now)
	if err != nil {
		h.logger.Error("department counts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if payload, err := json.Marshal(counts); err == nil {
		h.cache.SetCached(ctx, cacheKey, string(payload), countsCacheTTL)
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) departmentReport(c *gin.Context) {
	department := c.Query("department")
	batch := c.Query("batch")
	if department == "" || batch == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}
	start, end, ok := h.parseRange(c, "startDate", "endDate")
	if !ok {
		return
	}

	rows, err := h.reports.DepartmentReport(c.Request.Context(), department, batch, start, end)
	if err != nil {
		h.logger.Error("department report failed", zap.String("department", department), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if rows == nil {
		rows = []report.Row{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) exportDepartmentReport(c *gin.Context) {
	department := c.Query("department")
	batch := c.Query("batch")
	if department == "" || batch == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}
	start, end, ok := h.parseRange(c, "startDate", "endDate")
	if !ok {
		return
	}

	rows, err := h.reports.DepartmentReport(c.Request.Context(), department, batch, start, end)
	if err != nil {
		h.logger.Error("department report failed", zap.String("department", department), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	title := fmt.Sprintf("%s Department Report (%s to %s)", department, clock.DateKey(start), clock.DateKey(end))
	filename := fmt.Sprintf("%s-report-%s", department, clock.DateKey(end))

	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		buf, err := export.Excel(title, rows)
		if err != nil {
			h.logger.Error("xlsx export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf)
	case "pdf":
		buf, err := export.PDF(title, rows)
		if err != nil {
			h.logger.Error("pdf export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".pdf"))
		c.Data(http.StatusOK, "application/pdf", buf)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or pdf"})
	}
}

func (h *Handler) studentReport(c *gin.Context) {
	rollNo := c.Query("roll_no")
	if rollNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}
	start, end, ok := h.parseRange(c, "start_date", "end_date")
	if !ok {
		return
	}

	rep, err := h.reports.StudentReport(c.Request.Context(), rollNo, start, end)
	if err != nil {
		if errors.Is(err, attendance.ErrStudentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		h.logger.Error("student report failed", zap.String("roll_no", rollNo), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if rep.Attendance == nil {
		rep.Attendance = []report.StudentEntry{}
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) filteredAttendance(c *gin.Context) {
	start, end, ok := h.parseRange(c, "startDate", "endDate")
	if !ok {
		return
	}

	rows, err := h.reports.FilteredAttendance(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("filtered attendance failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if rows == nil {
		rows = []report.FilteredRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) testEmail(c *gin.Context) {
	results := h.runner.RunNow(c.Request.Context())
	success := true
	for _, r := range results {
		if !r.OK() {
			success = false
		}
	}
	status := http.StatusOK
	if !success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"success": success, "results": results})
}

func (h *Handler) createStudent(c *gin.Context) {
	var req struct {
		RollNo     string `json:"roll_no" binding:"required"`
		Name       string `json:"name" binding:"required"`
		Department string `json:"department" binding:"required"`
		Batch      string `json:"batch" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	student, err := h.svc.Register(c.Request.Context(), attendance.Student{
		RollNo: req.RollNo, Name: req.Name, Department: req.Department, Batch: req.Batch,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrStudentExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Roll number already registered"})
			return
		}
		h.logger.Error("create student failed", zap.String("roll_no", req.RollNo), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (h *Handler) listStudents(c *gin.Context) {
	students, err := h.svc.Students(c.Request.Context())
	if err != nil {
		h.logger.Error("list students failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if students == nil {
		students = []attendance.Student{}
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) deleteStudent(c *gin.Context) {
	err := h.svc.Remove(c.Request.Context(), c.Param("roll"))
	if err != nil {
		if errors.Is(err, attendance.ErrStudentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		h.logger.Error("delete student failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

// parseRange validates and parses a closed date range from query
// params. The end date is extended to 23:59:59 so the final day's
// records are included. Range order is checked here at the edge; the
// aggregator itself does not defend against inversion.
func (h *Handler) parseRange(c *gin.Context, startKey, endKey string) (time.Time, time.Time, bool) {
	startRaw, endRaw := c.Query(startKey), c.Query(endKey)
	if startRaw == "" || endRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Start date and end date are required."})
		return time.Time{}, time.Time{}, false
	}
	start, err := clock.ParseDate(startRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date, use YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	end, err := clock.ParseDate(endRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date, use YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Start date must not be after end date"})
		return time.Time{}, time.Time{}, false
	}
	return start, clock.WindowEnd(end), true
}
