package workorder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/abduss/fieldservice/internal/thumbnail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a well-formed PDF with the given number of blank pages.
func minimalPDF(pages int) []byte {
	var objects []string
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
	)
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestDocumentCountsPages(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	doc := minimalPDF(3)
	_, err := svc.Create(ctx, "WO-1", []byte(`{}`), bytes.NewReader(doc))
	require.NoError(t, err)

	info, err := svc.Document(ctx, "WO-1")
	require.NoError(t, err)
	assert.Equal(t, DocumentInfo{
		Name:      "WO-1.pdf",
		URL:       "/media/WO-1/WO-1.pdf",
		SizeBytes: int64(len(doc)),
		Pages:     3,
		Readable:  true,
	}, info)
}

func TestDocumentReportsUnreadableFile(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	_, err := svc.Create(ctx, "WO-1", []byte(`{}`), strings.NewReader("not a pdf"))
	require.NoError(t, err)

	info, err := svc.Document(ctx, "WO-1")
	require.NoError(t, err)
	assert.False(t, info.Readable)
	assert.Zero(t, info.Pages)
	assert.Equal(t, int64(9), info.SizeBytes)

	_, err = svc.Document(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegenerateThumbnailsFillsGaps(t *testing.T) {
	thumbs := &fakeThumbnailer{}
	svc, store := newTestService(t, thumbs, nil)
	ctx := context.Background()
	_, err := svc.AddMedia(ctx, "WO-1", []Upload{{Filename: "a.mp4", Body: strings.NewReader("v")}})
	require.NoError(t, err)
	require.NoError(t, store.WriteFile("WO-1", "b.mov", strings.NewReader("v")))

	results, err := svc.RegenerateThumbnails(ctx, "WO-1", false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, thumbnail.Result{Video: "b.mov", Thumbnail: "b_thumb.jpg", Status: thumbnail.StatusSucceeded}, results[0])

	results, err = svc.RegenerateThumbnails(ctx, "WO-1", true)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Len(t, thumbs.calls, 4)

	path, err := store.Path("WO-1", "b_thumb.jpg")
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, err = svc.RegenerateThumbnails(ctx, "ghost", false)
	assert.ErrorIs(t, err, ErrNotFound)
}
