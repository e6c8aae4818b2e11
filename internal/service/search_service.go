package service

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
)

const defaultSearchLimit = 8

type SearchService interface {
	Search(query string, limit int) (*SearchResult, error)
}

type SearchHit struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Link  string `json:"link"`
}

type SearchResult struct {
	Products []SearchHit `json:"products"`
	Users    []SearchHit `json:"users"`
}

type searchService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewSearchService(productRepo repository.ProductRepository, userRepo repository.UserRepository) SearchService {
	return &searchService{productRepo: productRepo, userRepo: userRepo}
}

// Search matches product and user names starting with query, case-insensitively.
func (s *searchService) Search(query string, limit int) (*SearchResult, error) {
	result := &SearchResult{Products: []SearchHit{}, Users: []SearchHit{}}
	query = strings.TrimSpace(query)
	if query == "" {
		return result, nil
	}
	if limit <= 0 || limit > 50 {
		limit = defaultSearchLimit
	}

	var (
		products []model.Product
		users    []model.User
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		products, err = s.productRepo.SearchByNamePrefix(query, limit)
		return
	})
	g.Go(func() (err error) {
		users, err = s.userRepo.SearchByNamePrefix(query, limit)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range products {
		result.Products = append(result.Products, SearchHit{ID: p.ID.String(), Label: p.Name, Link: "/products/" + p.ID.String() + "/edit"})
	}
	for _, u := range users {
		result.Users = append(result.Users, SearchHit{ID: u.ID.String(), Label: u.Name, Link: "/users/" + u.ID.String() + "/edit"})
	}
	return result, nil
}
