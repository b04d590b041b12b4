// Package remote talks to the spreadsheet-backed endpoint holding the roster and the attendance.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/absensi/core"
	"github.com/trezcool/absensi/core/attendance"
	"github.com/trezcool/absensi/core/roster"
)

// Write request types understood by the endpoint.
const (
	typeAddStudent       = "siswa"
	typeBulkAddStudents  = "bulk_siswa"
	typeEditStudent      = "edit"
	typeDeleteStudent    = "delete"
	typeBulkUpdate       = "bulkUpdateAttendance"
	typeClearAttendance  = "deleteAllAttendance"
	typeDeleteEverything = "deleteAllDataDataSiswanAbsensi"
)

// Client implements roster.Remote and attendance.Remote over HTTP.
//
// Writes are sent in discard-response mode unless confirmWrites is set: only transport
// failures are reported and deliveries are unconfirmed. Deleting everything is always
// checked, and falls back once to discard-response mode when the checked request fails.
type Client struct {
	baseURL       string
	rest          *rest.Client
	timeout       time.Duration
	deleteTimeout time.Duration
	confirmWrites bool
	logger        core.Logger
}

var (
	_ roster.Remote     = (*Client)(nil)
	_ attendance.Remote = (*Client)(nil)
)

func NewClient(conf core.RemoteConfig, logger core.Logger) *Client {
	return NewClientWithHTTP(conf, &http.Client{}, logger)
}

// NewClientWithHTTP is NewClient with a custom http.Client; timeouts are applied per request.
func NewClientWithHTTP(conf core.RemoteConfig, hc *http.Client, logger core.Logger) *Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	deleteTimeout := conf.DeleteTimeout
	if deleteTimeout <= 0 {
		deleteTimeout = 30 * time.Second
	}
	return &Client{
		baseURL:       strings.TrimSpace(conf.BaseURL),
		rest:          &rest.Client{HTTPClient: hc},
		timeout:       timeout,
		deleteTimeout: deleteTimeout,
		confirmWrites: conf.ConfirmWrites,
		logger:        logger,
	}
}

func (c *Client) do(ctx context.Context, action string, req rest.Request, timeout time.Duration) (*rest.Response, error) {
	if c.baseURL == "" {
		return nil, errors.Wrap(core.ErrRemoteUnavailable, "remote.baseURL is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req.BaseURL = c.baseURL
	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(core.ErrRemoteUnavailable, "%s: %v", action, err)
	}
	return res, nil
}

// query sends a GET request and returns the data of a successful envelope.
func (c *Client) query(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	q := make(map[string]string, len(params)+1)
	for k, v := range params {
		q[k] = v
	}
	if action != "" {
		q["action"] = action
	}

	res, err := c.do(ctx, action, rest.Request{Method: rest.Get, QueryParams: q}, c.timeout)
	if err != nil {
		return nil, err
	}
	return unwrap(action, res)
}

// unwrap checks the status and the envelope of a response.
// A bare JSON array is accepted as successful data.
func unwrap(action string, res *rest.Response) (json.RawMessage, error) {
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Wrapf(core.ErrRemoteUnavailable, "%s: status %d", action, res.StatusCode)
	}
	body := bytes.TrimSpace([]byte(res.Body))
	if len(body) > 0 && body[0] == '[' {
		return body, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrapf(core.ErrRemoteUnavailable, "%s: unreadable response: %v", action, err)
	}
	if !env.ok() {
		return nil, &core.RemoteError{Action: action, Message: cellString(env.Message).String}
	}
	return env.Data, nil
}

func (c *Client) write(ctx context.Context, action string, payload interface{}) (core.Delivery, error) {
	if c.confirmWrites {
		return c.checkedWrite(ctx, action, payload, c.timeout)
	}
	return c.discardWrite(ctx, action, payload)
}

func (c *Client) post(ctx context.Context, action string, payload interface{}, timeout time.Duration) (*rest.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", action)
	}
	req := rest.Request{
		Method:  rest.Post,
		Headers: map[string]string{"Content-Type": "text/plain;charset=utf-8"},
		Body:    body,
	}
	return c.do(ctx, action, req, timeout)
}

// discardWrite reports success as soon as the request is sent.
func (c *Client) discardWrite(ctx context.Context, action string, payload interface{}) (core.Delivery, error) {
	if _, err := c.post(ctx, action, payload, c.timeout); err != nil {
		return "", err
	}
	return core.DeliveryUnconfirmed, nil
}

func (c *Client) checkedWrite(ctx context.Context, action string, payload interface{}, timeout time.Duration) (core.Delivery, error) {
	res, err := c.post(ctx, action, payload, timeout)
	if err != nil {
		return "", err
	}
	if _, err := unwrap(action, res); err != nil {
		return "", err
	}
	return core.DeliveryConfirmed, nil
}

// Reads

func (c *Client) ListStudents(ctx context.Context) ([]roster.Student, error) {
	data, err := c.query(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}
	students := make([]roster.Student, 0, len(recs))
	for _, r := range recs {
		students = append(students, toStudent(r))
	}
	return students, nil
}

func (c *Client) SchoolInfo(ctx context.Context) (attendance.SchoolInfo, error) {
	data, err := c.query(ctx, "schoolData", nil)
	if err != nil {
		return attendance.SchoolInfo{}, err
	}
	recs, err := decodeRecords(data)
	if err != nil {
		return attendance.SchoolInfo{}, err
	}
	if len(recs) == 0 {
		return attendance.SchoolInfo{}, nil
	}
	return toSchoolInfo(recs[0]), nil
}

func (c *Client) recap(ctx context.Context, action string, params map[string]string) ([]attendance.RecapRow, error) {
	data, err := c.query(ctx, action, params)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}
	rows := make([]attendance.RecapRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, toRecapRow(r))
	}
	return rows, nil
}

// MonthlyRecap fetches the recap of a month; an empty class means every class.
func (c *Client) MonthlyRecap(ctx context.Context, class string, month time.Month) ([]attendance.RecapRow, error) {
	return c.recap(ctx, "monthlyRecap", map[string]string{
		"kelas": class,
		"bulan": attendance.MonthName(month),
	})
}

func (c *Client) SemesterRecap(ctx context.Context, class string, semester int) ([]attendance.RecapRow, error) {
	return c.recap(ctx, "semesterRecap", map[string]string{
		"kelas":    class,
		"semester": strconv.Itoa(semester),
	})
}

func (c *Client) GraphData(ctx context.Context, class string, semester int) (attendance.GraphData, error) {
	params := map[string]string{"kelas": class}
	if semester != 0 {
		params["semester"] = strconv.Itoa(semester)
	}
	data, err := c.query(ctx, "graphData", params)
	if err != nil {
		return nil, err
	}
	return toGraphData(data)
}

func (c *Client) AttendanceHistory(ctx context.Context) ([]attendance.HistoryRow, error) {
	data, err := c.query(ctx, "attendanceHistory", nil)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}
	rows := make([]attendance.HistoryRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, toHistoryRow(r))
	}
	return rows, nil
}

// Writes

type studentPayload struct {
	NISN  string `json:"nisn"`
	Name  string `json:"nama"`
	Class string `json:"kelas"`
}

func (c *Client) AddStudent(ctx context.Context, ns roster.NewStudent) (core.Delivery, error) {
	return c.write(ctx, typeAddStudent, struct {
		Type string `json:"type"`
		studentPayload
	}{typeAddStudent, studentPayload{ns.NISN, ns.Name, ns.Class}})
}

func (c *Client) BulkAddStudents(ctx context.Context, students []roster.NewStudent) (core.Delivery, error) {
	payload := make([]studentPayload, 0, len(students))
	for _, ns := range students {
		payload = append(payload, studentPayload{ns.NISN, ns.Name, ns.Class})
	}
	return c.write(ctx, typeBulkAddStudents, struct {
		Type     string           `json:"type"`
		Students []studentPayload `json:"students"`
	}{typeBulkAddStudents, payload})
}

func (c *Client) EditStudent(ctx context.Context, us roster.UpdateStudent) (core.Delivery, error) {
	return c.write(ctx, typeEditStudent, struct {
		Type    string `json:"type"`
		OldNISN string `json:"nisnLama"`
		NewNISN string `json:"nisnBaru"`
		Name    string `json:"nama"`
		Class   string `json:"kelas"`
	}{typeEditStudent, us.OldNISN, us.NISN, us.Name, us.Class})
}

func (c *Client) DeleteStudent(ctx context.Context, nisn string) (core.Delivery, error) {
	return c.write(ctx, typeDeleteStudent, struct {
		Type string `json:"type"`
		NISN string `json:"nisn"`
	}{typeDeleteStudent, nisn})
}

// SubmitAttendance posts the daily entries as a bare array.
func (c *Client) SubmitAttendance(ctx context.Context, entries []attendance.DailyEntry) (core.Delivery, error) {
	return c.write(ctx, "submitAttendance", entries)
}

func (c *Client) BulkUpdateAttendance(ctx context.Context, updates []attendance.Update) (core.Delivery, error) {
	return c.write(ctx, typeBulkUpdate, struct {
		Type    string              `json:"type"`
		Updates []attendance.Update `json:"updates"`
	}{typeBulkUpdate, updates})
}

func (c *Client) DeleteAllAttendance(ctx context.Context, sheetName string) (core.Delivery, error) {
	return c.write(ctx, typeClearAttendance, struct {
		Type      string `json:"type"`
		SheetName string `json:"sheetName"`
	}{typeClearAttendance, sheetName})
}

// DeleteAllData removes the roster and the attendance. The request is checked; when it
// cannot be sent or gets an error status it is sent again once in discard-response mode.
// A `success:false` answer is returned as is.
func (c *Client) DeleteAllData(ctx context.Context) (core.Delivery, error) {
	payload := struct {
		Type  string `json:"type"`
		Sheet string `json:"sheet"`
	}{typeDeleteEverything, "both"}

	dlv, err := c.checkedWrite(ctx, typeDeleteEverything, payload, c.deleteTimeout)
	if err == nil || errors.Cause(err) != core.ErrRemoteUnavailable || ctx.Err() != nil {
		return dlv, err
	}
	c.logger.Warn(fmt.Sprintf("%s: checked request failed, resending without response", typeDeleteEverything), err)
	return c.discardWrite(ctx, typeDeleteEverything, payload)
}
