package redirect

import (
	"net/url"
	"strings"
)

var videoHosts = []string{"youtube.com", "youtu.be"}

// IsVideoHost reports whether the destination is an http(s) link to a video
// site. Scheme-less destinations are checked as if they were http; any other
// scheme is never a video link.
func IsVideoHost(destination string) bool {
	if !isWebScheme(destination) {
		return false
	}

	host := hostOf(destination)
	if host == "" {
		lower := strings.ToLower(destination)
		for _, h := range videoHosts {
			if strings.Contains(lower, h) {
				return true
			}
		}
		return false
	}

	for _, h := range videoHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// isWebScheme смотрит на схему без url.Parse, чтобы битые URL тоже
// проверялись. Браузер отбрасывает ведущие пробелы и управляющие символы.
func isWebScheme(destination string) bool {
	s := strings.TrimLeftFunc(destination, func(r rune) bool { return r <= ' ' })
	i := strings.IndexAny(s, ":/?#")
	if i <= 0 || s[i] != ':' {
		return true
	}

	scheme := strings.ToLower(s[:i])
	return scheme == "http" || scheme == "https"
}

func hostOf(destination string) string {
	u, err := url.Parse(destination)
	if err != nil {
		return ""
	}
	if u.Host == "" && u.Scheme == "" {
		if u, err = url.Parse("http://" + destination); err != nil {
			return ""
		}
	}
	return strings.ToLower(u.Hostname())
}
