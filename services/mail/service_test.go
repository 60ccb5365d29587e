package mail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/iam/testutils"
	gomail "github.com/wneessen/go-mail"
)

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	html := `<p>Hi {{.Email}}, activate at <a href="{{.ActivationURL}}">{{.ActivationURL}}</a></p>`
	text := `Hi {{.Email}}, activate at {{.ActivationURL}}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "activation.html"), []byte(html), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "activation.txt"), []byte(text), 0o644))
	return dir
}

func newMailService(t *testing.T, templatesDir string) *Service {
	t.Helper()

	cfg := testutils.GetTestConfig()
	cfg.Mail.TemplatesDir = templatesDir

	svc, err := NewService(&cfg.Mail, nil)
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	t.Run("missing from address rejected", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Mail.FromAddress = ""

		_, err := NewService(&cfg.Mail, nil)
		assert.Error(t, err)
	})

	t.Run("empty templates dir tolerated", func(t *testing.T) {
		svc := newMailService(t, t.TempDir())
		assert.NotNil(t, svc)
	})
}

func TestService_RenderTemplate(t *testing.T) {
	svc := newMailService(t, writeTemplates(t))

	data := map[string]any{
		"Email":         "user@example.com",
		"ActivationURL": "http://localhost:3000/login?action=activate&token=abc",
	}

	t.Run("known template renders both bodies", func(t *testing.T) {
		msg := gomail.NewMsg()
		require.NoError(t, svc.renderTemplate("activation", data, msg))
	})

	t.Run("unknown template is an error", func(t *testing.T) {
		msg := gomail.NewMsg()
		err := svc.renderTemplate("no_such_template", data, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no template found")
	})

	t.Run("text-only template works", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"),
			[]byte(`Hello {{.Email}}`), 0o644))

		svc := newMailService(t, dir)
		msg := gomail.NewMsg()
		assert.NoError(t, svc.renderTemplate("plain", data, msg))
	})
}
