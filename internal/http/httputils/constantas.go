package httputils

// MIME: https://developer.mozilla.org/en-US/docs/Web/HTTP/Guides/MIME_types/Common_types

const (
	HeaderContentType     = "Content-Type"
	HeaderContentEncoding = "Content-Encoding"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentLength   = "Content-Length"
	HeaderUserAgent       = "User-Agent"
	HeaderForwardedFor    = "X-Forwarded-For"
	HeaderLocation        = "Location"
	HeaderRequestID       = "X-Request-ID"
	HeaderVary            = "Vary"

	MIMEApplicationJSON = "application/json"
	MIMETextHTML        = "text/html; charset=utf-8"
	MIMETextPlain       = "text/plain; charset=utf-8"
	MIMEFormURLEncoded  = "application/x-www-form-urlencoded"

	EncodingGzip = "gzip"
)

// Тексты ответов
const (
	MessageURLRequired   = "URL is required"
	MessageCodeRequired  = "Short code is required"
	MessageCodeNotFound  = "Short code not found"
	MessageInternalError = "Internal server error"
	MessageNotFound      = "Not found"
)
