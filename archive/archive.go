// Package archive keeps local copies of photos, stickers and receipts and
// mirrors them to remote storage.
package archive

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"repairbot/metrics"
)

// Directories artifacts are kept in, locally and remotely.
const (
	DirPhotos   = "photos"
	DirStickers = "stickers"
	DirReceipts = "pdf_receipts"
)

var Dirs = []string{DirPhotos, DirStickers, DirReceipts}

type Sink interface {
	// Put writes data to dir/name and returns the local path. The remote
	// copy is made in the background; its failure is only logged.
	Put(dir, name string, data []byte) (string, error)
}

type Archive struct {
	root     string
	uploader Uploader
	timeout  time.Duration
	logger   logrus.FieldLogger

	wg sync.WaitGroup
}

func New(root string, uploader Uploader, timeout time.Duration, logger logrus.FieldLogger) *Archive {
	return &Archive{
		root:     root,
		uploader: uploader,
		timeout:  timeout,
		logger:   logger,
	}
}

// Prepare creates the local directories.
func (a *Archive) Prepare() error {
	for _, dir := range Dirs {
		if err := os.MkdirAll(filepath.Join(a.root, dir), 0o755); err != nil {
			return errors.Wrapf(err, "cannot create %s", dir)
		}
	}
	return nil
}

func (a *Archive) Put(dir, name string, data []byte) (string, error) {
	local := filepath.Join(a.root, dir, name)
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", errors.Wrapf(err, "cannot create %s", dir)
	}
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "cannot write %s", local)
	}

	remote := dir + "/" + name
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.mirror(data, remote)
	}()

	return local, nil
}

func (a *Archive) mirror(data []byte, remote string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	logger := a.logger.WithField("remote", remote)
	if err := a.uploader.Upload(ctx, data, remote); err != nil {
		metrics.ArchiveUploads.WithLabelValues("error").Inc()
		logger.WithError(err).Error("cannot upload to archive")
		return
	}

	metrics.ArchiveUploads.WithLabelValues("ok").Inc()
	logger.Info("uploaded to archive")
}

// Wait blocks until every pending upload has finished.
func (a *Archive) Wait() {
	a.wg.Wait()
}
