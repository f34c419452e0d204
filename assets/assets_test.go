package assets

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/keepsake/apperrors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 200, A: 255}), imaging.PNG))
	return buf.Bytes()
}

type memoryStore struct {
	objects map[string][]byte
	fail    error
}

func (m *memoryStore) Put(_ context.Context, folder, filename, _ string, data []byte) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	key := folder + "/" + filename
	m.objects[key] = data
	return key, nil
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func TestSniffImageRejectsNonImages(t *testing.T) {
	_, err := SniffImage([]byte("hello, this is plain text"))
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))

	mime, err := SniffImage(pngBytes(t, 2, 2))
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)

	_, err = SniffImage(nil)
	require.Error(t, err)
}

func TestSaveWithoutStoreReturnsDataURL(t *testing.T) {
	lib := NewLibrary(Options{})
	ref, err := lib.Save(context.Background(), "photos", "a.png", pngBytes(t, 4, 3))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "data:image/png;base64,"))

	img, err := lib.Image(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())
	require.Equal(t, 3, img.Bounds().Dy())
}

func TestSaveThroughObjectStore(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	lib := NewLibrary(Options{Store: store})
	ref, err := lib.Save(context.Background(), "logos", "logo.png", pngBytes(t, 5, 5))
	require.NoError(t, err)
	require.Equal(t, "s3://logos/logo.png", ref)

	img, err := lib.Image(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, 5, img.Bounds().Dx())

	store.fail = errors.New("bucket offline")
	_, err = lib.Save(context.Background(), "logos", "logo.png", pngBytes(t, 5, 5))
	require.True(t, apperrors.Is(err, apperrors.CodeDependency))
}

func TestSaveEnforcesSizeLimit(t *testing.T) {
	lib := NewLibrary(Options{MaxBytes: 10})
	_, err := lib.Save(context.Background(), "photos", "big.png", pngBytes(t, 20, 20))
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestFileRefsStayInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), pngBytes(t, 3, 3), 0o644))
	lib := NewLibrary(Options{BaseDir: dir})

	_, err := lib.Image(context.Background(), "photo.png")
	require.NoError(t, err)

	_, err = lib.Image(context.Background(), "../outside.png")
	require.Error(t, err)

	_, err = NewLibrary(Options{}).Image(context.Background(), "photo.png")
	require.Error(t, err)
}

func TestUndecodableImageFails(t *testing.T) {
	lib := NewLibrary(Options{})
	_, err := lib.Image(context.Background(), EncodeDataURL("image/png", []byte("not a png")))
	require.Error(t, err)
}

func TestDecodeDataURLPercentEncoding(t *testing.T) {
	mime, data, err := DecodeDataURL("data:text/plain,hello%20world")
	require.NoError(t, err)
	require.Equal(t, "text/plain", mime)
	require.Equal(t, "hello world", string(data))

	_, _, err = DecodeDataURL("data:image/png;base64")
	require.Error(t, err)
}

type fakeS3 struct {
	put *s3.PutObjectInput
	obj []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.obj = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.obj))}, nil
}

func TestS3StorageKeysAndRoundTrip(t *testing.T) {
	fake := &fakeS3{}
	s := &S3Storage{client: fake, bucket: "cards", publicURL: "https://cdn.example.com/cards/"}

	key, err := s.Put(context.Background(), "photos", "me.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "photos/"))
	require.True(t, strings.HasSuffix(key, ".jpg"))
	require.Equal(t, "cards", aws.ToString(fake.put.Bucket))
	require.Equal(t, "image/jpeg", aws.ToString(fake.put.ContentType))

	data, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))
	require.Equal(t, "https://cdn.example.com/cards/"+key, s.PublicURL(key))
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(S3Config{Region: "us-east-1"})
	require.Error(t, err)
	s, err := NewS3Storage(S3Config{Region: "us-east-1", Bucket: "cards", Endpoint: "http://localhost:9000", UsePathStyle: true})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/cards/a.png", s.PublicURL("a.png"))
}
