package asset_scanner

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ryanwalloh/assetkit/asset_scanner/models"
	"github.com/ryanwalloh/assetkit/logger"
	"github.com/zeebo/xxh3"
)

// FindDuplicates groups assets whose bytes are identical. Only groups with
// two or more members are returned, ordered by their first path.
func (scanner *ReferenceScanner) FindDuplicates(assets []models.Asset) ([]models.DuplicateGroup, error) {
	// Different sizes can never collide, so only same-size files are hashed.
	bySize := make(map[int64][]models.Asset)
	for _, asset := range assets {
		bySize[asset.Size] = append(bySize[asset.Size], asset)
	}

	byFingerprint := make(map[string][]string)
	for _, sameSize := range bySize {
		if len(sameSize) < 2 {
			continue
		}
		for _, asset := range sameSize {
			fingerprint, err := fingerprintFile(asset.FullPath)
			if err != nil {
				logger.Debug("Skipping fingerprint for %s: %v", asset.Path, err)
				continue
			}
			byFingerprint[fingerprint] = append(byFingerprint[fingerprint], asset.Path)
		}
	}

	var groups []models.DuplicateGroup
	for fingerprint, paths := range byFingerprint {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		groups = append(groups, models.DuplicateGroup{Fingerprint: fingerprint, Paths: paths})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Paths[0] < groups[j].Paths[0]
	})

	return groups, nil
}

func fingerprintFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := xxh3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
