package organizer

import (
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// outputMode is the permission of every file written, matching os.Create
// before umask. afero.TempFile creates the staging file as 0600.
const outputMode = 0644

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeFile stages the output of write in the destination directory and
// renames it over dest once write and close both succeeded. The staging
// file is removed on any failure. It returns the number of bytes written.
func (o *Organizer) writeFile(dest string, write func(w io.Writer) error) (int64, error) {
	tmp, err := afero.TempFile(o.fs, filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			o.fs.Remove(tmpName)
		}
	}()

	cw := &countingWriter{w: tmp}
	if err := write(cw); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := o.fs.Chmod(tmpName, outputMode); err != nil {
		return 0, err
	}
	if err := o.fs.Rename(tmpName, dest); err != nil {
		return 0, err
	}

	committed = true
	return cw.n, nil
}
