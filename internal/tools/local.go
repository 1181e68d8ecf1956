package tools

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/webtoolkit/convkit/internal/imaging"
	"github.com/webtoolkit/convkit/internal/utils"
	"github.com/webtoolkit/convkit/internal/widget"
)

func readFirst(files []widget.PendingFile) (widget.PendingFile, []byte, error) {
	if len(files) == 0 {
		return widget.PendingFile{}, nil, widget.ErrTooFewFiles
	}
	f := files[0]
	rc, err := f.Open()
	if err != nil {
		return f, nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return f, nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return f, data, nil
}

func intParam(params map[string]string, key string, def int) int {
	if n, err := strconv.Atoi(params[key]); err == nil {
		return n
	}
	return def
}

func compressImage(ctx context.Context, files []widget.PendingFile, params map[string]string) (*widget.Output, error) {
	f, data, err := readFirst(files)
	if err != nil {
		return nil, err
	}
	res, err := imaging.Compress(data, intParam(params, "quality", imaging.DefaultCompressQuality))
	if err != nil {
		return nil, err
	}
	return &widget.Output{
		Data:     res.Data,
		MIMEType: res.MIMEType,
		Status:   fmt.Sprintf("Done: %s -> %s.", utils.FormatBytes(f.Size), utils.FormatBytes(int64(len(res.Data)))),
	}, nil
}

func resizeImage(ctx context.Context, files []widget.PendingFile, params map[string]string) (*widget.Output, error) {
	f, data, err := readFirst(files)
	if err != nil {
		return nil, err
	}
	w, h, err := imaging.Dimensions(data)
	if err != nil {
		return nil, err
	}
	res, err := imaging.Resize(data, f.MIMEType, intParam(params, "percent", imaging.DefaultResizePercent))
	if err != nil {
		return nil, err
	}
	return &widget.Output{
		Data:     res.Data,
		MIMEType: res.MIMEType,
		FileName: "perkecil_web_toolkit." + imaging.ExtFor(res.MIMEType),
		Status: fmt.Sprintf("Done: %dx%d -> %dx%d. File size: %s",
			w, h, res.Width, res.Height, utils.FormatBytes(int64(len(res.Data)))),
	}, nil
}

// convertImage encodes locally when Go has an encoder for the target and
// leaves the rest to the server.
func convertImage(ctx context.Context, files []widget.PendingFile, params map[string]string) (*widget.Output, error) {
	target := params["target"]
	if !imaging.CanEncodeLocally(target) {
		return nil, widget.ErrUseServer
	}
	f, data, err := readFirst(files)
	if err != nil {
		return nil, err
	}
	res, err := imaging.Convert(data, target, intParam(params, "quality", imaging.DefaultConvertQuality))
	if err != nil {
		return nil, err
	}
	return &widget.Output{
		Data:     res.Data,
		MIMEType: res.MIMEType,
		FileName: convertName(files, params),
		Status:   fmt.Sprintf("Done (local). %s -> %s.", utils.FormatBytes(f.Size), utils.FormatBytes(int64(len(res.Data)))),
	}, nil
}

func convertName(_ []widget.PendingFile, params map[string]string) string {
	return "konversi_gambar_web_toolkit." + imaging.ExtFor(params["target"])
}
