package service

import (
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"simedu_backend/internal/config"
	"simedu_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetEntry is one simulation image asset.
type AssetEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AssetProvider lists simulation assets from a storage backend.
type AssetProvider interface {
	List(ctx context.Context, folder string) ([]AssetEntry, error)
}

// AssetService resolves a simulation's asset folder, falling back to
// the default path convention when the catalog does not name one.
type AssetService struct {
	Provider AssetProvider
	Config   *config.StorageConfig
}

func NewAssetService(cfg *config.StorageConfig) (*AssetService, error) {
	var provider AssetProvider
	var err error
	switch cfg.Type {
	case util.StorageMinio:
		provider, err = newMinioAssetProvider(cfg)
		if err != nil {
			return nil, err
		}
	default:
		provider = &localAssetProvider{Config: cfg}
	}
	return &AssetService{Provider: provider, Config: cfg}, nil
}

// ListSimulationAssets lists the images of one simulation. An empty
// catalog folder falls back to <default_asset_path>/<simulation name>.
func (s *AssetService) ListSimulationAssets(ctx context.Context, simulationName, assetFolder string) ([]AssetEntry, error) {
	folder := assetFolder
	if folder == "" {
		folder = path.Join(s.Config.DefaultAssetPath, simulationName)
	}
	return s.Provider.List(ctx, folder)
}

// localAssetProvider serves assets from the local uploads directory.
type localAssetProvider struct {
	Config *config.StorageConfig
}

func (p *localAssetProvider) List(ctx context.Context, folder string) ([]AssetEntry, error) {
	dir := filepath.Join(p.Config.LocalPath, filepath.FromSlash(folder))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []AssetEntry{}, nil
		}
		return nil, err
	}

	assets := make([]AssetEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isImageName(e.Name()) {
			continue
		}
		assets = append(assets, AssetEntry{
			Name: e.Name(),
			URL:  "/assets/" + path.Join(folder, e.Name()),
		})
	}
	return assets, nil
}

func isImageName(name string) bool {
	return strings.HasPrefix(mime.TypeByExtension(filepath.Ext(name)), util.MimeImage)
}

// minioAssetProvider serves assets from a MinIO bucket.
type minioAssetProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func newMinioAssetProvider(cfg *config.StorageConfig) (*minioAssetProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &minioAssetProvider{Config: cfg, Client: client}, nil
}

func (p *minioAssetProvider) List(ctx context.Context, folder string) ([]AssetEntry, error) {
	prefix := strings.TrimSuffix(folder, "/") + "/"

	var assets []AssetEntry
	for obj := range p.Client.ListObjects(ctx, p.Config.MinioBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") || !isImageName(obj.Key) {
			continue
		}
		assets = append(assets, AssetEntry{
			Name: path.Base(obj.Key),
			URL:  "http://" + p.Config.MinioEndpoint + "/" + p.Config.MinioBucket + "/" + obj.Key,
		})
	}
	return assets, nil
}
