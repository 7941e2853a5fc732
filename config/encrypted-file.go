package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
)

var (
	fileEncrKey = []byte("Qx7#mT2p!vL9rW4z@K8cN1bF6hJ3dS0y")
)

// EncryptedFile stores bytes on disk using AES-GCM and base64 encoding.
type EncryptedFile struct {
	Dirname  string
	FileName string
	FullPath string
}

func NewEncryptedFile(dirName string, filename string) *EncryptedFile {
	return &EncryptedFile{Dirname: dirName, FileName: filename, FullPath: path.Join(dirName, filename)}
}

func (f *EncryptedFile) Set(text []byte) error {
	sealed, err := Encrypt(text, fileEncrKey)
	if err != nil {
		return err
	}
	b64 := base64.StdEncoding.EncodeToString(sealed)
	if !fileExists(f.FullPath) { // if the file does not exist...
		if err := makeDir(f.Dirname); err != nil {
			return err
		}
	}
	if err = os.WriteFile(f.FullPath, []byte(b64), 0600); err != nil {
		return errors.Wrapf(err, "error writing file %v", f.FullPath)
	}
	return nil
}

func (f *EncryptedFile) Get() ([]byte, error) {
	if !fileExists(f.FullPath) {
		return nil, FileNotFoundError{f.FullPath}
	}
	b64, err := os.ReadFile(f.FullPath)
	if err != nil {
		return nil, err
	}
	cipherText, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding file %v", f.FullPath)
	}
	return Decrypt(cipherText, fileEncrKey)
}

// Encrypt seals text with AES-GCM. The random nonce is prepended to the result.
func Encrypt(text []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, text, nil), nil
}

func Decrypt(text []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(text) < nonceSize {
		return nil, errors.New("encrypted text is too short")
	}
	nonce, cipherText := text[:nonceSize], text[nonceSize:]
	return gcm.Open(nil, nonce, cipherText, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(c)
}
