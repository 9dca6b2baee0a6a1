package adsdomain

import "strings"

type ReportConfiguration struct {
	AdProduct    string   `json:"adProduct"`
	GroupBy      []string `json:"groupBy"`
	Columns      []string `json:"columns"`
	ReportTypeID string   `json:"reportTypeId"`
	TimeUnit     string   `json:"timeUnit"`
	Format       string   `json:"format"`
}

type ReportRequest struct {
	Name          string              `json:"name"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Configuration ReportConfiguration `json:"configuration"`
}

// ReportResponse cobre os nomes de campos usados pelas versões da API
type ReportResponse struct {
	ReportID         string `json:"reportId"`
	Status           string `json:"status"`
	ProcessingStatus string `json:"processingStatus"`
	State            string `json:"state"`
	URL              string `json:"url"`
	Location         string `json:"location"`
	FailureReason    string `json:"failureReason"`
	StatusDetails    string `json:"statusDetails"`
}

func (r ReportResponse) RawStatus() string {
	for _, s := range []string{r.Status, r.ProcessingStatus, r.State} {
		if s != "" {
			return strings.ToUpper(s)
		}
	}
	return ""
}

func (r ReportResponse) DownloadLocation() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Location
}

func (r ReportResponse) Reason() string {
	if r.FailureReason != "" {
		return r.FailureReason
	}
	return r.StatusDetails
}

// ReportRow é uma linha do relatório com os valores já em texto
type ReportRow map[string]string

// Value devolve o primeiro campo presente entre os nomes informados
func (r ReportRow) Value(names ...string) string {
	for _, n := range names {
		if v, ok := r[n]; ok && v != "" {
			return v
		}
	}
	return ""
}
