// internal/workers/notification/send-notification/templates.go
package sendnotification

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ideaforge-workers/internal/models"
)

// notificationTemplate bodies are Markdown with {{key}} placeholders filled
// from the job's data map.
type notificationTemplate struct {
	Subject string
	Body    string
	Short   string
}

var templates = map[string]notificationTemplate{
	models.NotificationInterest: {
		Subject: "New investor interest in {{ideaTitle}}",
		Body: `## New investor interest

**{{investorName}}** ({{investorRole}}) expressed interest in your idea *{{ideaTitle}}*.

{{message}}

[Open the idea]({{ideaUrl}})`,
		Short: "{{investorName}} expressed interest in your '{{ideaTitle}}' idea",
	},
	models.NotificationScoreUpdate: {
		Subject: "{{ideaTitle}} scored {{score}}/100",
		Body: `## Evaluation complete

Your idea *{{ideaTitle}}* received an AI score of **{{score}}/100**.

{{suggestions}}

[See the full breakdown]({{ideaUrl}})`,
		Short: "Your idea '{{ideaTitle}}' scored {{score}}/100",
	},
	models.NotificationNewIdea: {
		Subject: "New idea in {{category}}: {{ideaTitle}}",
		Body: `## {{ideaTitle}}

*{{tagline}}*

Posted by {{entrepreneurName}} in **{{category}}**.

[Take a look]({{ideaUrl}})`,
		Short: "New {{category}} idea: {{ideaTitle}}",
	},
	models.NotificationWeeklyDigest: {
		Subject: "Your weekly IdeaForge digest",
		Body: `## This week on IdeaForge

{{summary}}

{{highlights}}`,
		Short: "Your weekly IdeaForge digest is ready",
	},
}

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type rendered struct {
	Subject string
	Text    string
	HTML    string
	Short   string
}

func render(notificationType string, data map[string]interface{}) (*rendered, error) {
	tmpl, ok := templates[notificationType]
	if !ok {
		return nil, fmt.Errorf("no template for notification type %q", notificationType)
	}

	text := strings.TrimSpace(substitute(tmpl.Body, data))
	var html bytes.Buffer
	if err := markdown.Convert([]byte(text), &html); err != nil {
		return nil, fmt.Errorf("render %s body: %w", notificationType, err)
	}

	return &rendered{
		Subject: singleLine(substitute(tmpl.Subject, data)),
		Text:    text,
		HTML:    html.String(),
		Short:   singleLine(substitute(tmpl.Short, data)),
	}, nil
}

// substitute fills placeholders. Missing keys become empty and lists become
// Markdown bullet lists.
func substitute(s string, data map[string]interface{}) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		return formatValue(data[key])
	})
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.1f", val)
	case []string:
		return bulletList(val)
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, formatValue(item))
		}
		return bulletList(items)
	default:
		return fmt.Sprint(val)
	}
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
