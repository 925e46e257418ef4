package job

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kevinktg/chatbot/internal/artifact"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// SnapshotJob copies pipeline output files into the artifact store so a
// fresh deployment can pull the latest chunk and vector data.
type SnapshotJob struct {
	store artifact.Store
	paths []string
}

func NewSnapshotJob(store artifact.Store, paths []string) *SnapshotJob {
	return &SnapshotJob{store: store, paths: paths}
}

func (j *SnapshotJob) Name() string {
	return "snapshot"
}

func (j *SnapshotJob) Run(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	for _, path := range j.paths {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("snapshot source missing", zap.String("path", path))
				continue
			}
			return err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		key := "snapshots/" + filepath.Base(path)
		err = j.store.Save(ctx, key, f, info.Size())
		f.Close()
		if err != nil {
			return err
		}
		logger.Info("snapshot published", zap.String("key", key), zap.Int64("bytes", info.Size()))
	}
	return nil
}
