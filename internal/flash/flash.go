// Package flash carries a one-shot notification across the
// POST → redirect → GET boundary in a cookie.
//
// A handler that mutates data calls Set on its response; the handler that
// serves the redirect target calls Take, which returns the message and
// expires the cookie in the same response. Reloading the page afterwards
// shows nothing. No state is kept on the server.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Message kinds understood by the templates.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// DefaultCookieName is used when a Notifier has no CookieName.
const DefaultCookieName = "_flash"

// Message is the notification shown once on the next page.
type Message struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success builds a KindSuccess message.
func Success(text string) Message {
	return Message{Kind: KindSuccess, Message: text}
}

// Error builds a KindError message.
func Error(text string) Message {
	return Message{Kind: KindError, Message: text}
}

// ErrDecode is wrapped by Decode failures.
var ErrDecode = errors.New("flash: malformed cookie value")

// Notifier writes and reads the flash cookie.
type Notifier struct {
	CookieName string
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

func (n Notifier) name() string {
	if n.CookieName == "" {
		return DefaultCookieName
	}
	return n.CookieName
}

// Set attaches msg to the response. A flash cookie set earlier on the same
// response is replaced.
func (n Notifier) Set(w http.ResponseWriter, msg Message) error {
	value, err := Encode(msg)
	if err != nil {
		return err
	}
	n.dropPending(w)
	http.SetCookie(w, &http.Cookie{
		Name:     n.name(),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   n.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Take reads the flash cookie from r and expires it on w. The second
// result is false when there is no cookie or its value does not decode;
// a malformed cookie is expired all the same.
func (n Notifier) Take(w http.ResponseWriter, r *http.Request) (Message, bool) {
	msg, ok, _ := n.TakeErr(w, r)
	return msg, ok
}

// TakeErr is Take that also reports why a present cookie was discarded,
// for callers that want to log it.
func (n Notifier) TakeErr(w http.ResponseWriter, r *http.Request) (Message, bool, error) {
	c, err := r.Cookie(n.name())
	if err != nil {
		return Message{}, false, nil
	}

	n.dropPending(w)
	http.SetCookie(w, &http.Cookie{
		Name:     n.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   n.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	msg, err := Decode(c.Value)
	if err != nil {
		return Message{}, false, err
	}
	return msg, true, nil
}

// dropPending removes Set-Cookie headers for the flash cookie already
// queued on w, so only the last Set or Take of an exchange is sent.
func (n Notifier) dropPending(w http.ResponseWriter) {
	h := w.Header()
	prefix := n.name() + "="
	kept := h["Set-Cookie"][:0]
	for _, v := range h["Set-Cookie"] {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		h.Del("Set-Cookie")
		return
	}
	h["Set-Cookie"] = kept
}

// Encode serializes msg into a cookie-safe string: base64url of its JSON.
func Encode(msg Message) (string, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("flash: encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode is the inverse of Encode.
func Decode(value string) (Message, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if msg.Kind == "" && msg.Message == "" {
		return Message{}, fmt.Errorf("%w: empty message", ErrDecode)
	}
	return msg, nil
}

var std Notifier

// Set attaches msg to the response using the default cookie settings.
func Set(w http.ResponseWriter, msg Message) error { return std.Set(w, msg) }

// Take reads and expires the flash cookie using the default cookie settings.
func Take(w http.ResponseWriter, r *http.Request) (Message, bool) { return std.Take(w, r) }
