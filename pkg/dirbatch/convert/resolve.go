// Package convert validates image conversion requests and computes their
// output paths. It does not convert anything.
package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/listing"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/pathsafe"
)

// Request asks for ImagePath to be converted to Format. A blank OutputDir
// means the image's own directory.
type Request struct {
	ImagePath string
	Format    string
	OutputDir string
}

// Target is a resolved conversion: where the image is and where its
// conversion should be written.
type Target struct {
	ImagePath  string `json:"img_path"`
	OutputPath string `json:"output_path"`
}

// Resolver checks conversion requests against a filesystem.
type Resolver struct {
	fs     filesystem.ReadFS
	logger core.Logger
}

// NewResolver creates a Resolver
func NewResolver(fsys filesystem.ReadFS, logger core.Logger) *Resolver {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Resolver{fs: fsys, logger: logger}
}

// Resolve validates req and computes the output path. The output never
// overwrites: an existing file at the output path is an error.
func (r *Resolver) Resolve(req Request) (Target, error) {
	imagePath, err := filepath.Abs(req.ImagePath)
	if err != nil {
		return Target{}, fmt.Errorf("failed to resolve %s: %w", req.ImagePath, err)
	}

	info, err := r.fs.Stat(imagePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Target{}, &core.NotFoundError{Path: imagePath}
	case err != nil:
		return Target{}, fmt.Errorf("failed to stat %s: %w", imagePath, err)
	case info.IsDir():
		return Target{}, &core.ConversionError{
			Path: imagePath, Format: req.Format, Kind: core.ErrInvalidImage,
			Reason: "is a directory",
		}
	}

	ext := filepath.Ext(imagePath)
	if contentType := ContentType(ext); !IsImageType(contentType) {
		return Target{}, &core.ConversionError{
			Path: imagePath, Format: req.Format, Kind: core.ErrInvalidImage,
			Reason: "not a valid image",
		}
	}

	if !IsSupported(ext, req.Format) {
		return Target{}, &core.ConversionError{
			Path: imagePath, Format: req.Format, Kind: core.ErrUnsupportedConversion,
			Reason: fmt.Sprintf("intended format %s is not supported", req.Format),
		}
	}

	outputDir := req.OutputDir
	if strings.TrimSpace(outputDir) == "" {
		outputDir = filepath.Dir(imagePath)
	}
	dir, err := listing.ResolveDirectory(r.fs, outputDir)
	if err != nil {
		return Target{}, err
	}

	outputName := strings.TrimSuffix(filepath.Base(imagePath), ext) + "." + req.Format
	outputPath := dir.Join(outputName)

	exists, err := pathsafe.Exists(r.fs, outputPath)
	if err != nil {
		return Target{}, err
	}
	if exists {
		return Target{}, &core.TargetExistsError{Path: outputPath}
	}

	r.logger.Debug().
		Str("image", imagePath).
		Str("output", outputPath).
		Msg("resolved conversion target")

	return Target{ImagePath: imagePath, OutputPath: outputPath}, nil
}
