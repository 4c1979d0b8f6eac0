package services

import (
	"context"
	"log"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var MinioClient *minio.Client

func ConnectMinio() {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Println("⚠️ MinIO non configuré :", err)
		return
	}
	MinioClient = client
	log.Println("✅ Connecté à MinIO :", endpoint)
}

func assetsBucket() string {
	if b := os.Getenv("MINIO_ASSETS_BUCKET"); b != "" {
		return b
	}
	return "variant-assets"
}

// AssetStorage supprime les objets 3D orphelins après une suppression de
// produit (implémente approval.AssetRemover). Best-effort : les lignes en
// base sont déjà parties, un raté se rejoue à la main via les logs.
type AssetStorage struct{}

func (AssetStorage) RemoveObjects(ctx context.Context, keys []string) {
	if MinioClient == nil {
		log.Println("⚠️ MinIO non initialisé, objets non supprimés:", keys)
		return
	}

	bucket := assetsBucket()
	for _, key := range keys {
		if err := MinioClient.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
			log.Printf("❌ Erreur suppression objet %s/%s: %v", bucket, key, err)
		}
	}
}
