package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxBodyBytes = 1 << 20

// maxEpochMillis bounds numeric dates to +/-100,000,000 days around the epoch.
const maxEpochMillis = 8.64e15

var (
	errUsernameRequired    = errors.New("username is required")
	errDescriptionRequired = errors.New("description is required")
	errDurationRequired    = errors.New("duration is required")
	errDurationNotNumeric  = errors.New("duration must be a number")
)

// formDecoder is implemented by request payloads that may arrive url-encoded.
type formDecoder interface {
	fromForm(url.Values)
}

// decodeBody fills dst from a JSON or form-encoded body. An empty body leaves dst zero-valued
// so that field validation reports what is missing.
func decodeBody(r *http.Request, dst formDecoder) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
				return err
			}
		} else if err := r.ParseForm(); err != nil {
			return err
		}
		dst.fromForm(r.PostForm)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// CreateUserRequest is the payload for POST /api/users.
type CreateUserRequest struct {
	Username lenientString `json:"username"`
}

func (r *CreateUserRequest) fromForm(values url.Values) {
	r.Username = lenientString(values.Get("username"))
}

// Validate ensures a username was supplied.
func (r CreateUserRequest) Validate() error {
	if strings.TrimSpace(string(r.Username)) == "" {
		return errUsernameRequired
	}
	return nil
}

// flexibleNumber accepts a JSON number or a JSON string holding one.
type flexibleNumber string

func (n *flexibleNumber) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*n = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = flexibleNumber(s)
	default:
		*n = flexibleNumber(trimmed)
	}
	return nil
}

// lenientString keeps JSON strings and reads every other JSON value as empty.
type lenientString string

func (s *lenientString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = lenientString(v)
	return nil
}

// flexibleDate accepts a date string or epoch milliseconds. Other JSON values decode as empty,
// which later resolves to today.
type flexibleDate string

func (d *flexibleDate) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*d = flexibleDate(s)
		return nil
	}

	*d = ""
	millis, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil || math.IsNaN(millis) || math.Abs(millis) > maxEpochMillis {
		return nil
	}
	*d = flexibleDate(time.UnixMilli(int64(millis)).UTC().Format(time.RFC3339Nano))
	return nil
}

// LogExerciseRequest is the payload for POST /api/users/{_id}/exercises.
type LogExerciseRequest struct {
	Description string         `json:"description"`
	Duration    flexibleNumber `json:"duration"`
	Date        flexibleDate   `json:"date"`
}

func (r *LogExerciseRequest) fromForm(values url.Values) {
	r.Description = values.Get("description")
	r.Duration = flexibleNumber(values.Get("duration"))
	r.Date = flexibleDate(values.Get("date"))
}

// Validate checks required fields and returns the parsed duration.
func (r LogExerciseRequest) Validate() (float64, error) {
	if strings.TrimSpace(r.Description) == "" {
		return 0, errDescriptionRequired
	}
	raw := strings.TrimSpace(string(r.Duration))
	if raw == "" {
		return 0, errDurationRequired
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0, errDurationNotNumeric
	}
	return duration, nil
}
