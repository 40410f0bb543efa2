package dashboard

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"unicode"
	"unicode/utf8"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message shown once after an action.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

func (n Notice) Empty() bool { return n.Message == "" }

func SuccessNotice(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }

func ErrorNotice(err error) Notice {
	if err == nil {
		return Notice{}
	}
	return Notice{Level: NoticeError, Message: capitalize(err.Error())}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

const flashCookie = "wt_flash"

// SetFlash stores n for the next page render.
func SetFlash(w http.ResponseWriter, n Notice) {
	if n.Empty() {
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeFlash returns the pending notice, if any, and clears it.
func TakeFlash(w http.ResponseWriter, r *http.Request) Notice {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return Notice{}
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Notice{}
	}
	var n Notice
	if json.Unmarshal(b, &n) != nil {
		return Notice{}
	}
	return n
}
