package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/securestorage/internal/crypto/domain"
)

// KMSSchemes lists the keeper URL schemes the stored key can be wrapped with.
var KMSSchemes = []string{"awskms", "azurekeyvault", "base64key", "gcpkms", "hashivault"}

// KMSService opens the keeper that wraps the exported storage key before it is persisted.
type KMSService struct{}

// NewKMSService creates a KMS service.
func NewKMSService() *KMSService {
	return &KMSService{}
}

// OpenKeeper opens the keeper named by keyURI. The scheme is checked against
// KMSSchemes first so a typo fails with the list of valid providers.
func (k *KMSService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	scheme, err := KMSScheme(keyURI)
	if err != nil {
		return nil, err
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s keeper: %w", scheme, err)
	}
	return keeper, nil
}

// KMSScheme returns the provider scheme of keyURI.
func KMSScheme(keyURI string) (string, error) {
	u, err := url.Parse(keyURI)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("%w: %q is not a keeper URL", cryptoDomain.ErrUnsupportedKMSProvider, keyURI)
	}
	if !slices.Contains(KMSSchemes, u.Scheme) {
		return "", fmt.Errorf(
			"%w: %s (valid options: %s)",
			cryptoDomain.ErrUnsupportedKMSProvider,
			u.Scheme,
			strings.Join(KMSSchemes, ", "),
		)
	}
	return u.Scheme, nil
}
