package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/responses"
	"github.com/dbdesk/mysql-admin/internal/services"
)

type DataHandler struct {
	dataService     *services.DataService
	mutationService *services.MutationService
}

func NewDataHandler(dataService *services.DataService, mutationService *services.MutationService) *DataHandler {
	return &DataHandler{
		dataService:     dataService,
		mutationService: mutationService,
	}
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a positive integer", services.ErrInvalidInput, name)
	}
	return value, nil
}

// parseFilter decodes the filter query parameter, a JSON object of
// column to substring. Non-string values are matched by their JSON text.
func parseFilter(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}

	var decoded map[string]interface{}
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: filter must be a JSON object", services.ErrInvalidInput)
	}

	filter := make(map[string]string, len(decoded))
	for column, value := range decoded {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			filter[column] = v
		default:
			filter[column] = fmt.Sprint(v)
		}
	}
	return filter, nil
}

// GetData handles GET /api/tables/:tableName/data
func (h *DataHandler) GetData(c *gin.Context) {
	table := c.Param("tableName")

	page, err := queryInt(c, "page", services.DefaultPage)
	if err != nil {
		writeError(c, err, "")
		return
	}
	limit, err := queryInt(c, "limit", services.DefaultLimit)
	if err != nil {
		writeError(c, err, "")
		return
	}
	filter, err := parseFilter(c.Query("filter"))
	if err != nil {
		writeError(c, err, "")
		return
	}

	result, err := h.dataService.GetPage(c.Request.Context(), table, services.ReadOptions{
		Page:   page,
		Limit:  limit,
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
		Filter: filter,
	})
	if err != nil {
		writeError(c, err, fmt.Sprintf("Failed to fetch data for table %s", table))
		return
	}

	responses.Success(c, http.StatusOK, result)
}

// parseInsertBody accepts {data, relatedRecords} or a flat column map.
func parseInsertBody(body map[string]interface{}) (map[string]interface{}, []models.RelatedRecord, error) {
	values := body
	if data, ok := body["data"].(map[string]interface{}); ok {
		values = data
	}

	rawRelated, ok := body["relatedRecords"]
	if !ok || rawRelated == nil {
		return values, nil, nil
	}
	list, ok := rawRelated.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("%w: relatedRecords must be an array", services.ErrInvalidInput)
	}

	related := make([]models.RelatedRecord, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("%w: each related record must be an object", services.ErrInvalidInput)
		}
		rec := models.RelatedRecord{}
		rec.Table, _ = obj["table"].(string)
		rec.Data, _ = obj["data"].(map[string]interface{})
		rec.LinkField, _ = obj["linkField"].(string)
		rec.LinkToField, _ = obj["linkToField"].(string)
		related = append(related, rec)
	}
	return values, related, nil
}

// InsertRecord handles POST /api/tables/:tableName/data
func (h *DataHandler) InsertRecord(c *gin.Context) {
	table := c.Param("tableName")

	var body map[string]interface{}
	if err := bindJSON(c, &body); err != nil {
		writeError(c, err, "")
		return
	}

	values, related, err := parseInsertBody(body)
	if err != nil {
		writeError(c, err, "")
		return
	}

	result, err := h.mutationService.Insert(c.Request.Context(), table, values, related)
	if err != nil {
		writeError(c, err, fmt.Sprintf("Failed to insert data into table %s", table))
		return
	}

	response := gin.H{
		"message": "Record created successfully",
		"id":      result.ID,
	}
	if len(result.RelatedRecords) > 0 {
		response["relatedRecords"] = result.RelatedRecords
	}
	responses.Success(c, http.StatusCreated, response)
}

// UpdateRecord handles PUT /api/tables/:tableName/data/:id
func (h *DataHandler) UpdateRecord(c *gin.Context) {
	table := c.Param("tableName")
	id := c.Param("id")

	var changes map[string]interface{}
	if err := bindJSON(c, &changes); err != nil {
		writeError(c, err, "")
		return
	}

	force := c.Query("force") == "true"
	if err := h.mutationService.Update(c.Request.Context(), table, id, changes, force); err != nil {
		writeError(c, err, fmt.Sprintf("Failed to update data in table %s", table))
		return
	}

	responses.Message(c, http.StatusOK, "Record updated successfully")
}

// DeleteRecord handles DELETE /api/tables/:tableName/data/:id
func (h *DataHandler) DeleteRecord(c *gin.Context) {
	table := c.Param("tableName")
	id := c.Param("id")

	force := c.Query("force") == "true"
	if err := h.mutationService.Delete(c.Request.Context(), table, id, force); err != nil {
		writeError(c, err, fmt.Sprintf("Failed to delete data from table %s", table))
		return
	}

	responses.Message(c, http.StatusOK, "Record deleted successfully")
}
