package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMailHTMLEscapesContent(t *testing.T) {
	html := buildMailHTML("Request REQ-0007 <done>",
		[]string{"Sample of 2-<methyl>furan finished."},
		[]mailMetaItem{{Label: "Compound", Value: "2-<methyl>furan"}},
		"", "")

	assert.NotContains(t, html, "<methyl>")
	assert.Contains(t, html, "&lt;methyl&gt;")
	assert.Contains(t, html, "Request REQ-0007 &lt;done&gt;")
}

func TestBuildMailHTMLMetaAndButton(t *testing.T) {
	html := buildMailHTML("New analysis request",
		[]string{"A request is waiting."},
		[]mailMetaItem{
			{Label: "Request", Value: "REQ-0001"},
			{Label: "", Value: "dropped"},
			{Label: "dropped too", Value: "  "},
		},
		"Open request", "https://lab.example.com/requests/1")

	assert.Contains(t, html, "REQ-0001")
	assert.NotContains(t, html, "dropped")
	assert.Contains(t, html, `href="https://lab.example.com/requests/1"`)
	assert.Contains(t, html, ">Open request</a>")
}

func TestBuildMailHTMLWithoutButton(t *testing.T) {
	html := buildMailHTML("Subject", []string{"Body."}, nil, "", "")

	assert.False(t, strings.Contains(html, "<a href"), "no button expected")
	assert.Contains(t, html, "Body.")
}
