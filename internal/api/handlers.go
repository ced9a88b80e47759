package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/service"
)

type handlers struct {
	svc    *service.Service
	format export.Format
}

type addInventoryRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

type updateInventoryRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
	Action   string           `json:"action"`
}

type addTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type assignRequest struct {
	UserID uint   `json:"user_id"`
	Notes  string `json:"notes"`
}

// fail writes the error body for err. Unclassified errors are logged.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("api: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperr.Kind(err)})
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, apperr.Invalid("request", "body", err.Error()))
		return false
	}
	return true
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, apperr.Invalid("request", "id", "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

func (h *handlers) health(c *gin.Context) {
	sqlDB, err := h.svc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) listInventory(c *gin.Context) {
	items, err := h.svc.CheckInventory(c.Query("name"), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records(export.InventoryRecords(items)))
}

func (h *handlers) lowStock(c *gin.Context) {
	items, err := h.svc.LowStock()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records(export.InventoryRecords(items)))
}

func (h *handlers) addInventory(c *gin.Context) {
	var req addInventoryRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.svc.AddInventory(service.AddInventoryInput{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *handlers) updateInventory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req updateInventoryRequest
	if !bind(c, &req) {
		return
	}
	if req.Quantity == nil {
		fail(c, apperr.Invalid("inventory item", "quantity", "is required"))
		return
	}
	qty, err := h.svc.UpdateInventory(id, *req.Quantity, req.Action)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "quantity": qty})
}

func (h *handlers) listAnimals(c *gin.Context) {
	animals, err := h.svc.ListAnimals()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records(export.AnimalRecords(animals)))
}

func (h *handlers) listTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks(c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records(export.TaskRecords(tasks)))
}

func (h *handlers) addTask(c *gin.Context) {
	var req addTaskRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.svc.AddTask(service.AddTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *handlers) completeTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := h.svc.CompleteTask(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, taskRecord(t))
}

func (h *handlers) setTaskStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.svc.SetTaskStatus(id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, taskRecord(t))
}

func (h *handlers) assignTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req assignRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.svc.AssignTask(id, req.UserID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          a.ID,
		"task_id":     a.TaskID,
		"user_id":     a.UserID,
		"assigned_by": a.AssignedBy,
		"status":      a.Status,
		"assigned_at": a.AssignedAt,
	})
}

func (h *handlers) exportData(c *gin.Context) {
	format := h.format
	if q := c.Query("format"); q != "" {
		f, err := export.ParseFormat(q)
		if err != nil {
			fail(c, err)
			return
		}
		format = f
	}
	dataType := c.Param("type")
	content, err := h.svc.Export(dataType, format)
	if err != nil {
		fail(c, err)
		return
	}
	if format == export.FormatXLSX {
		c.Header("Content-Disposition", `attachment; filename="`+dataType+`.xlsx"`)
	}
	c.Data(http.StatusOK, contentType(format), content)
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatJSON:
		return "application/json; charset=utf-8"
	case export.FormatCSV:
		return "text/csv; charset=utf-8"
	case export.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/plain; charset=utf-8"
}

// records keeps empty listings as [] rather than null.
func records(rs []export.Record) []export.Record {
	if rs == nil {
		return []export.Record{}
	}
	return rs
}

func taskRecord(t *models.Task) export.Record {
	return export.TaskRecords([]models.Task{*t})[0]
}
