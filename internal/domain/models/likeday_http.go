package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type LikeDayRequest struct {
	TargetDate string `query:"target_date" json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	Hub        string `query:"hub" json:"hub" default:"WESTERN HUB"`
	Features   string `query:"features" json:"features"` // "da.lmp_total:1,rt.lmp_total:0.5"
	Hours      string `query:"hours" json:"hours"`
	DaysOfWeek string `query:"days_of_week" json:"days_of_week"`
	Months     string `query:"months" json:"months"`
	HistStart  string `query:"hist_start" json:"hist_start" validate:"omitempty,datetime=2006-01-02"`
	HistEnd    string `query:"hist_end" json:"hist_end" validate:"omitempty,datetime=2006-01-02"`
	NNeighbors int    `query:"n_neighbors" json:"n_neighbors" default:"5" validate:"gte=1,lte=20"`
	Metric     string `query:"metric" json:"metric" default:"cosine" validate:"oneof=euclidean manhattan_mae rmse cosine"`
}

type BackfillRequest struct {
	Hub    string `query:"hub" json:"hub" default:"WESTERN HUB"`
	Market string `query:"market" json:"market" default:"da" validate:"oneof=da rt"`
	Start  string `query:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End    string `query:"end" json:"end" validate:"required,datetime=2006-01-02"`
}
