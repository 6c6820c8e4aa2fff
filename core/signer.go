package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	SourceAsset   string              `json:"source_asset,omitempty"`
	SourceAmount  decimal.NullDecimal `json:"source_amount"`
	Destination   string              `json:"destination"`
	DestAmount    decimal.Decimal     `json:"dest_amount"`
	DestAsset     string              `json:"dest_asset"`
	AccountRef    string              `json:"account_ref"`
	SigningKeyRef string              `json:"signing_key_ref"`
}

type SignedPayment struct {
	Artifact    string              `json:"signed_artifact"`
	ReportedFee decimal.NullDecimal `json:"reported_fee"`
	ArtifactID  string              `json:"artifact_id,omitempty"`
}

type SignerService interface {
	CreatePayment(ctx context.Context, req *PaymentRequest) (*SignedPayment, error)
}

type SubmitService interface {
	Submit(ctx context.Context, artifact string) error
}
