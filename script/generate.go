package script

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

// Generate writes the linker script and, when enabled, the startup glue
// for img into dir. img must pass Validate, so a Snapshot of an
// incomplete layout is rejected before anything is written. dir must
// already exist. Each file is written to a
// temporary name and renamed into place, so a failed run never leaves a
// truncated file behind. The written paths are returned in order.
func Generate(dir string, img *layout.Image, opts Options) ([]string, error) {
	if img == nil {
		return nil, errors.InvalidInput(errors.PhaseGenerate, nil, "nil image")
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.IO(errors.PhaseGenerate, dir, err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.PhaseGenerate, errors.KindIO).
			Value(dir).
			Detail("%s is not a directory", dir).
			Build()
	}

	files := []struct {
		name string
		body string
	}{
		{opts.ScriptName, LinkerScript(img, opts)},
	}
	if opts.Startup {
		files = append(files, struct {
			name string
			body string
		}{opts.StartupName, StartupGlue(img, opts)})
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeAtomic(path, []byte(f.body)); err != nil {
			return written, errors.IO(errors.PhaseGenerate, path, err)
		}
		written = append(written, path)

		Logger().Info("wrote file",
			zap.String("path", path),
			zap.Int("bytes", len(f.body)))
	}
	return written, nil
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
