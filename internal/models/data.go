package models

// Row is one result row keyed by column name.
type Row map[string]interface{}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

type Page struct {
	Data       []Row      `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// RelatedRecord is a row inserted together with a primary record. LinkField
// of the related row is set from the primary record: the generated id when
// LinkToField is "id", otherwise the primary record's LinkToField value.
type RelatedRecord struct {
	Table       string                 `json:"table"`
	Data        map[string]interface{} `json:"data"`
	LinkField   string                 `json:"linkField"`
	LinkToField string                 `json:"linkToField"`
}

type RelatedResult struct {
	Table   string `json:"table"`
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
}

type InsertResult struct {
	ID             int64           `json:"id"`
	RelatedRecords []RelatedResult `json:"relatedRecords,omitempty"`
}

type ReferencedData struct {
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
	Data             []Row  `json:"data"`
}
