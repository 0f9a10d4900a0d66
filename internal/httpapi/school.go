package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"school-platform/internal/attendance"
	"school-platform/internal/auth"
	"school-platform/internal/students"
	"school-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SchoolHandlers groups the CRUD handlers around the auth core.
type SchoolHandlers struct {
	Students   *students.Service
	Attendance *attendance.Service

	Production bool
}

func (h SchoolHandlers) fail(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"ok": false, "msg": msg}
	if err != nil && !h.Production {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

/* ===================== STUDENTS ===================== */

func (h SchoolHandlers) ListStudents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Students.List(c.Request.Context(), limit, offset)
	if err != nil {
		logger.FromGin(c).Error("list students failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "students": list})
}

func (h SchoolHandlers) GetStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.fail(c, http.StatusBadRequest, "invalid student id", nil)
		return
	}
	s, err := h.Students.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			h.fail(c, http.StatusNotFound, "student not found", nil)
			return
		}
		logger.FromGin(c).Error("get student failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "student": s})
}

func (h SchoolHandlers) EnrollStudent(c *gin.Context) {
	var req students.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid json body", err)
		return
	}
	s, err := h.Students.Enroll(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, students.ErrInvalidArgument) {
			h.fail(c, http.StatusBadRequest, "firstName, lastName and nationalId are required", nil)
			return
		}
		logger.FromGin(c).Error("enroll failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "student": s})
}

func (h SchoolHandlers) UpdateStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.fail(c, http.StatusBadRequest, "invalid student id", nil)
		return
	}
	var req students.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid json body", err)
		return
	}
	s, err := h.Students.Update(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, students.ErrInvalidArgument):
			h.fail(c, http.StatusBadRequest, "nothing to update", nil)
		case errors.Is(err, students.ErrNotFound):
			h.fail(c, http.StatusNotFound, "student not found", nil)
		default:
			logger.FromGin(c).Error("update student failed", "err", err)
			h.fail(c, http.StatusInternalServerError, "server error", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "student": s})
}

func (h SchoolHandlers) DeleteStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.fail(c, http.StatusBadRequest, "invalid student id", nil)
		return
	}
	if err := h.Students.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, students.ErrNotFound) {
			h.fail(c, http.StatusNotFound, "student not found", nil)
			return
		}
		logger.FromGin(c).Error("delete student failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "msg": "student deleted"})
}

/* ===================== REPRESENTATIVES ===================== */

func (h SchoolHandlers) SearchRepresentatives(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	reps, err := h.Students.SearchRepresentatives(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		if errors.Is(err, students.ErrInvalidArgument) {
			h.fail(c, http.StatusBadRequest, "query parameter q is required", nil)
			return
		}
		logger.FromGin(c).Error("representative search failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "representatives": reps})
}

/* ===================== ATTENDANCE ===================== */

type attendanceBatchRequest struct {
	Records []attendance.Record `json:"records"`
}

func (h SchoolHandlers) SubmitAttendance(c *gin.Context) {
	ident, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		h.fail(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	var req attendanceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid json body", err)
		return
	}
	if err := h.Attendance.SubmitBatch(c.Request.Context(), ident.UserID, req.Records); err != nil {
		if errors.Is(err, attendance.ErrInvalidArgument) {
			h.fail(c, http.StatusBadRequest, "invalid attendance batch", err)
			return
		}
		logger.FromGin(c).Error("attendance batch failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "msg": "attendance recorded", "count": len(req.Records)})
}

func (h SchoolHandlers) ListAttendance(c *gin.Context) {
	list, err := h.Attendance.ListByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidArgument) {
			h.fail(c, http.StatusBadRequest, "query parameter date must be YYYY-MM-DD", nil)
			return
		}
		logger.FromGin(c).Error("attendance list failed", "err", err)
		h.fail(c, http.StatusInternalServerError, "server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "attendance": list})
}
