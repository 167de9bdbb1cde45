package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/querydesk/querydesk/api/v1"
)

// ListTables returns the tables of a database
// (POST /tables)
func (h *Handler) ListTables(c *gin.Context) {
	var req v1.TablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "invalid request body"})
		return
	}

	tables, err := h.catalogSrv.Tables(c.Request.Context(), req.DatabaseID)
	if err != nil {
		writeError(c, "catalog_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.TablesResponse{Success: true, Tables: tables, Count: len(tables)})
}

// ListColumns returns the columns of a table
// (POST /columns)
func (h *Handler) ListColumns(c *gin.Context) {
	var req v1.ColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "invalid request body"})
		return
	}

	columns, err := h.catalogSrv.Columns(c.Request.Context(), req.DatabaseID, req.TableName)
	if err != nil {
		writeError(c, "catalog_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.ColumnsResponse{
		Success: true,
		Table:   req.TableName,
		Columns: v1.NewColumns(columns),
		Count:   len(columns),
	})
}

// ListColumnValues returns distinct values of a column matching the search term
// (POST /column-values)
func (h *Handler) ListColumnValues(c *gin.Context) {
	var req v1.ColumnValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.catalogSrv.ColumnValues(c.Request.Context(), req.DatabaseID, req.TableName, req.ColumnName, req.SearchTerm)
	if err != nil {
		writeError(c, "catalog_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.ColumnValuesResponse{
		Success:    true,
		TableName:  req.TableName,
		ColumnName: res.Column,
		SearchTerm: req.SearchTerm,
		Values:     res.Values,
		Count:      len(res.Values),
	})
}

// SearchValues returns values equal to or containing the search term
// (POST /search-values)
func (h *Handler) SearchValues(c *gin.Context) {
	var req v1.ColumnValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "invalid request body"})
		return
	}

	values, err := h.catalogSrv.SearchValues(c.Request.Context(), req.DatabaseID, req.TableName, req.ColumnName, req.SearchTerm, req.Limit)
	if err != nil {
		writeError(c, "catalog_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.ColumnValuesResponse{
		Success:    true,
		TableName:  req.TableName,
		ColumnName: req.ColumnName,
		SearchTerm: req.SearchTerm,
		Values:     values,
		Count:      len(values),
	})
}
