package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, 8.5, opts.PaperWidth)
	assert.Equal(t, 11.0, opts.PaperHeight)
	assert.Equal(t, 0.5, opts.MarginInches)
	assert.False(t, opts.Landscape)
	assert.True(t, opts.PrintBackground)
}

func TestRenderPDF_EmptyHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "empty string", html: ""},
		{name: "whitespace only", html: "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderPDF(context.Background(), tt.html, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "empty HTML")
		})
	}
}

func TestWritePDF_EmptyPath(t *testing.T) {
	err := WritePDF(context.Background(), "<html><body>hi</body></html>", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output path")
}

func TestWritePDF_EmptyHTML(t *testing.T) {
	err := WritePDF(context.Background(), "", "out.pdf", nil)
	require.Error(t, err)
}
