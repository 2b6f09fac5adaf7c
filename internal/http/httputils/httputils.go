package httputils

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"shortlinks/internal/http/dto"
)

func WriteJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(HeaderContentType, MIMEApplicationJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteJSONFailure writes {"success": false, "message": ...}.
func WriteJSONFailure(w http.ResponseWriter, status int, message string) {
	WriteJSONResponse(w, status, dto.FailureResponse{Success: false, Message: message})
}

func WriteHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set(HeaderContentType, MIMETextHTML)
	w.WriteHeader(status)
	w.Write(body)
}

// WriteRedirect sets Location verbatim; http.Redirect would rewrite
// scheme-less targets as paths on this host.
func WriteRedirect(w http.ResponseWriter, location string) {
	w.Header().Set(HeaderLocation, location)
	w.WriteHeader(http.StatusFound)
}

// ClientIP prefers the first X-Forwarded-For entry, then the peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get(HeaderForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserAgent returns the raw header or "Unknown".
func UserAgent(r *http.Request) string {
	if ua := r.Header.Get(HeaderUserAgent); ua != "" {
		return ua
	}
	return "Unknown"
}

const maxFormBody = 1 << 20

// FormValue reads a urlencoded field from the request body. Bodies sent
// without a Content-Type are parsed as urlencoded too.
func FormValue(r *http.Request, key string) string {
	if r.Header.Get(HeaderContentType) != "" {
		return strings.TrimSpace(r.PostFormValue(key))
	}
	if r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFormBody))
	if err != nil {
		return ""
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(values.Get(key))
}

func BuildShortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/r/" + code
}
