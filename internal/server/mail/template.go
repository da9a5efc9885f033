package mail

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const ForgotPasswordSubject = "Password recovery"

// RenderForgotPassword renders the reset-code mail for name.
func RenderForgotPassword(code, name string) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "forgot_password.html", struct {
		Name string
		Code string
	}{Name: name, Code: code})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
