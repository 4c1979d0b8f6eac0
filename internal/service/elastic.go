package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"vitrine_back_end/internal/database"
	"vitrine_back_end/internal/models"
)

const productIndex = "boutique_products"

//
// --- MIROIR DU LISTING PUBLIC DANS ELASTICSEARCH ---
//

// ProductIndexer branche l'index sur le cycle de revue
// (implémente approval.SearchIndexer)
type ProductIndexer struct{}

func (ProductIndexer) IndexProduct(p models.Product) {
	IndexProduct(p)
}

func (ProductIndexer) RemoveProduct(id string) {
	RemoveProduct(id)
}

// IndexProduct indexe un produit approuvé dans Elasticsearch
func IndexProduct(p models.Product) {
	if database.Elastic == nil {
		log.Println("⚠️ Elastic non initialisé, impossible d'indexer:", p.Title)
		return
	}

	data, _ := json.Marshal(p)
	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", p.Title, res.String())
	} else {
		log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Title)
	}
}

// RemoveProduct retire un produit du listing public (retrait, rejet,
// suppression). Le 404 est normal si le produit n'a jamais été indexé.
func RemoveProduct(id string) {
	if database.Elastic == nil {
		return
	}

	req := esapi.DeleteRequest{
		Index:      productIndex,
		DocumentID: id,
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur suppression Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", id, res.String())
	}
}
