package contracts

import "github.com/ryanwalloh/assetkit/asset_scanner/models"

type IReferenceScanner interface {
	ListAssets(assetsRoot string, sourceRoot string) ([]models.Asset, error)
	ListCodeFiles(sourceRoot string) ([]string, error)
	Scan(assetsRoot string, sourceRoot string) (*models.ScanResult, error)
	FindDuplicates(assets []models.Asset) ([]models.DuplicateGroup, error)
	GetCacheStats() map[string]interface{}
}
