package adsclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	adsdomain "github.com/vfg2006/ppc-automation/infrastructure/integrator/ads/domain"
	"github.com/vfg2006/ppc-automation/internal/domain"
)

const (
	reportsPath              = "/reporting/reports"
	contentTypeReportRequest = "application/vnd.createasyncreportrequest.v3+json"
)

func (c *AdsClient) RequestReport(ctx context.Context, report adsdomain.ReportRequest) (string, error) {
	body, err := c.send(ctx, request{
		operation:   "requestReport",
		method:      http.MethodPost,
		path:        reportsPath,
		body:        report,
		contentType: contentTypeReportRequest,
	})
	if err != nil {
		return "", err
	}

	var resp adsdomain.ReportResponse
	if err := decode("requestReport", body, &resp); err != nil {
		return "", err
	}
	if resp.ReportID == "" {
		return "", &domain.APIError{Kind: domain.ErrFatalAPI, Operation: "requestReport", Message: "malformed response: missing reportId"}
	}

	logrus.WithFields(logrus.Fields{
		"report_id":   resp.ReportID,
		"report_type": report.Configuration.ReportTypeID,
	}).Debug("adsclient: relatório solicitado")

	return resp.ReportID, nil
}

func (c *AdsClient) PollReport(ctx context.Context, reportID string) (*adsdomain.ReportResponse, error) {
	body, err := c.send(ctx, request{
		operation: "pollReport",
		method:    http.MethodGet,
		path:      fmt.Sprintf("%s/%s", reportsPath, url.PathEscape(reportID)),
	})
	if err != nil {
		return nil, err
	}

	var resp adsdomain.ReportResponse
	if err := decode("pollReport", body, &resp); err != nil {
		return nil, err
	}
	if resp.ReportID == "" {
		resp.ReportID = reportID
	}
	return &resp, nil
}

// DownloadReport baixa o conteúdo bruto. URLs absolutas (pré-assinadas) são
// acessadas sem credenciais; sem location usa o endpoint de download da API.
func (c *AdsClient) DownloadReport(ctx context.Context, reportID string, location string) ([]byte, error) {
	req := request{
		operation: "downloadReport",
		method:    http.MethodGet,
		accept:    "*/*",
		path:      fmt.Sprintf("%s/%s/download", reportsPath, url.PathEscape(reportID)),
	}
	if location != "" {
		req.path = location
		req.anonymous = true
	}

	return c.send(ctx, req)
}
