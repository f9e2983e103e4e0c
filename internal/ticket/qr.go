package ticket

import (
    "net/url"

    qrcode "github.com/skip2/go-qrcode"
)

// Encoder renders tokens as PNG QR codes of the validation URL.  The output
// depends only on the token.
type Encoder struct {
    BaseURL string
    Size    int
}

// ValidationURL appends the token as the `token` query parameter.
func (e Encoder) ValidationURL(token string) string {
    u, err := url.Parse(e.BaseURL)
    if err != nil {
        return e.BaseURL + "?token=" + url.QueryEscape(token)
    }
    q := u.Query()
    q.Set("token", token)
    u.RawQuery = q.Encode()
    return u.String()
}

// Encode returns the PNG bytes of the QR code for token.
func (e Encoder) Encode(token string) ([]byte, error) {
    size := e.Size
    if size <= 0 {
        size = 256
    }
    return qrcode.Encode(e.ValidationURL(token), qrcode.Medium, size)
}
