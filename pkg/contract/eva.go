package contract

// EVA is the API representation of one spacewalk record.
type EVA struct {
	ID              string  `json:"id"`
	Ordinal         int     `json:"ordinal"`
	Date            string  `json:"date"`
	DurationMinutes float64 `json:"duration_minutes"`
	Country         string  `json:"country"`
	Vehicle         string  `json:"vehicle"`
	Crew            string  `json:"crew"`
	Purpose         string  `json:"purpose"`
}

type SearchEVAs struct {
	Filter     string   `json:"filter"      query:"filter"`
	OrderBy    []string `json:"order_by"    query:"order_by"`
	MaxResults *int32   `json:"max_results" query:"max_results" validate:"omitempty,gte=1,lte=1000"`
	PageToken  string   `json:"page_token"  query:"page_token"  validate:"omitempty,base64"`
}

type SearchEVAsResponse struct {
	EVAs          []*EVA  `json:"evas"`
	NextPageToken *string `json:"next_page_token,omitempty"`
}

type GetEVA struct {
	ID string `params:"id" validate:"required,uuid"`
}

type GetEVAResponse struct {
	EVA *EVA `json:"eva"`
}

type CountrySummary struct {
	Country      string  `json:"country"`
	Count        int64   `json:"count"`
	TotalMinutes float64 `json:"total_minutes"`
	MaxMinutes   float64 `json:"max_minutes"`
}

type Summary struct {
	Count     int64            `json:"count"`
	Earliest  string           `json:"earliest,omitempty"`
	Latest    string           `json:"latest,omitempty"`
	Countries []CountrySummary `json:"countries"`
	Source    string           `json:"source,omitempty"`
	FetchedAt string           `json:"fetched_at,omitempty"`
}
