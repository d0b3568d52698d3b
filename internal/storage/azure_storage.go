package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/anime-shed/frame-inspector-go/internal/compress"
)

// AzureFrameStore downloads frames from one storage account.
type AzureFrameStore struct {
	client   *azblob.Client
	account  string
	maxBytes int64
}

func NewAzureFrameStore(accountName, accountKey string, maxBytes int64) (*AzureFrameStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureFrameStore{client: client, account: accountName, maxBytes: maxBytes}, nil
}

// FetchFrame downloads the blob addressed by blobURL. Both
// https://<account>.blob.core.windows.net/<container>/<blob> and the
// .../<container>?blob=<blob> form are accepted.
func (s *AzureFrameStore) FetchFrame(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := parseBlobURL(blobURL, s.account)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrFrameNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	body := resp.Body
	defer body.Close()

	if resp.ContentLength != nil && *resp.ContentLength > s.maxBytes && !blobIsZstd(resp.ContentEncoding) {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrFrameTooLarge, s.maxBytes)
	}

	data, err := readLimited(body, s.maxBytes)
	if err != nil {
		return nil, err
	}
	if !blobIsZstd(resp.ContentEncoding) {
		return data, nil
	}

	inflated, err := compress.Decompress(data, s.maxBytes)
	if errors.Is(err, compress.ErrTooLarge) {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrFrameTooLarge, s.maxBytes)
	}
	return inflated, err
}

func blobIsZstd(encoding *string) bool {
	return encoding != nil && strings.EqualFold(strings.TrimSpace(*encoding), "zstd")
}

// parseBlobURL splits a blob URL into container and blob name. When account
// is not empty the URL must point at that account.
func parseBlobURL(blobURL, account string) (string, string, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if account != "" && !strings.EqualFold(parsedURL.Hostname(), account+".blob.core.windows.net") {
		return "", "", fmt.Errorf("%w: host %q is not storage account %q", ErrInvalidReference, parsedURL.Hostname(), account)
	}

	path := strings.TrimPrefix(parsedURL.Path, "/")
	containerName, blobName, _ := strings.Cut(path, "/")
	if blobName == "" {
		blobName = parsedURL.Query().Get("blob")
	}
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("%w: %q names no container and blob", ErrInvalidReference, blobURL)
	}
	return containerName, blobName, nil
}
