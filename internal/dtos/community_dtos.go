package dtos

import "github.com/poofware/housing-service/internal/models"

type AddBlockRequest struct {
	Name string `json:"name" validate:"required,alpha,max=8"`
}

type AddBlockResponse struct {
	Block string `json:"block"`
}

// AddFlatRequest accepts any positive category; only 1, 2 and 3 can be
// billed, so flats of other categories cannot be registered.
type AddFlatRequest struct {
	BlockNo  string `json:"block_no" validate:"required,alpha,max=8"`
	FlatNo   string `json:"flat_no" validate:"required,alphanum,max=10"`
	Category int    `json:"category" validate:"required,gt=0"`
}

type FlatResponse struct {
	BlockNo  string              `json:"block_no"`
	FlatNo   string              `json:"flat_no"`
	Category models.FlatCategory `json:"category"`
	Status   string              `json:"status"`
}

func NewFlatResponse(f *models.Flat) FlatResponse {
	return FlatResponse{
		BlockNo:  f.BlockNo,
		FlatNo:   f.FlatNo,
		Category: f.Category,
		Status:   string(f.Status),
	}
}

type BlocksResponse struct {
	Blocks []string `json:"blocks"`
}

type UnoccupiedFlatsInfoResponse struct {
	Flats []models.FlatInfo `json:"flats"`
}

type OccupiedFlatsResponse struct {
	Flats []models.OccupiedFlat `json:"flats"`
}
