// Package tinkcbc provides Tink integration for the AES-CBC service.
// This file contains the KeyManager that registers AES-CBC keys with Tink's registry.
package tinkcbc

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	"github.com/vdparikh/sbox/aescbc"
	"github.com/vdparikh/sbox/subtle"
	"google.golang.org/protobuf/proto"
)

const (
	// AESCBCKeyTypeURL is the type URL for AES-CBC keys in Tink's registry.
	AESCBCKeyTypeURL = "type.googleapis.com/google.crypto.tink.AesCbcKey"

	keyMaterialSymmetric = tink_go_proto.KeyData_SYMMETRIC
)

// KeyManager implements registry.KeyManager for AES-CBC keys.
// Key values are the raw AES key bytes.
type KeyManager struct {
	typeURL string
}

// NewKeyManager creates a new AES-CBC key manager.
func NewKeyManager() *KeyManager {
	return &KeyManager{
		typeURL: AESCBCKeyTypeURL,
	}
}

// Primitive returns an aescbc.Cipher for the given serialized key.
func (km *KeyManager) Primitive(serializedKey []byte) (interface{}, error) {
	if !subtle.ValidKeySize(len(serializedKey)) {
		return nil, fmt.Errorf("invalid key size: %d bytes (must be 16, 24, or 32)", len(serializedKey))
	}
	c, err := aescbc.NewCipher(serializedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES-CBC cipher: %w", err)
	}
	return c, nil
}

// DoesSupport returns true if this KeyManager supports the given key type URL.
func (km *KeyManager) DoesSupport(typeURL string) bool {
	return typeURL == km.typeURL
}

// TypeURL returns the type URL of the keys managed by this KeyManager.
func (km *KeyManager) TypeURL() string {
	return km.typeURL
}

// NewKey generates a new key according to the given key template and
// returns it as KeyData.
func (km *KeyManager) NewKey(serializedKeyTemplate []byte) (proto.Message, error) {
	keyData, err := km.NewKeyData(serializedKeyTemplate)
	if err != nil {
		return nil, err
	}
	return keyData, nil
}

// NewKeyData creates a new KeyData from the given key template. The template
// value holds the key size as a single byte; an empty template means AES-256.
func (km *KeyManager) NewKeyData(serializedKeyTemplate []byte) (*tink_go_proto.KeyData, error) {
	keySize, err := templateKeySize(serializedKeyTemplate)
	if err != nil {
		return nil, err
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	return &tink_go_proto.KeyData{
		TypeUrl:         km.typeURL,
		Value:           key,
		KeyMaterialType: keyMaterialSymmetric,
	}, nil
}

func templateKeySize(template []byte) (int, error) {
	if len(template) == 0 {
		return 32, nil
	}
	if len(template) != 1 || !subtle.ValidKeySize(int(template[0])) {
		return 0, fmt.Errorf("invalid key size in template: %v (must be 16, 24, or 32)", template)
	}
	return int(template[0]), nil
}

var _ registry.KeyManager = (*KeyManager)(nil)

// Register adds the KeyManager to Tink's registry unless a manager for
// AESCBCKeyTypeURL is already present. It is safe to call more than once.
func Register() error {
	if _, err := registry.GetKeyManager(AESCBCKeyTypeURL); err == nil {
		return nil
	}
	return registry.RegisterKeyManager(NewKeyManager())
}

// KeyTemplate returns the default template (AES-256):
//
//	handle, err := keyset.NewHandle(tinkcbc.KeyTemplate())
func KeyTemplate() *tink_go_proto.KeyTemplate {
	return KeyTemplateAES256()
}

// KeyTemplateAES128 creates a key template for AES-128-CBC (16 bytes).
func KeyTemplateAES128() *tink_go_proto.KeyTemplate {
	return keyTemplate(16)
}

// KeyTemplateAES192 creates a key template for AES-192-CBC (24 bytes).
func KeyTemplateAES192() *tink_go_proto.KeyTemplate {
	return keyTemplate(24)
}

// KeyTemplateAES256 creates a key template for AES-256-CBC (32 bytes).
func KeyTemplateAES256() *tink_go_proto.KeyTemplate {
	return keyTemplate(32)
}

// KeyTemplateForLength maps a key length in bytes to its template.
func KeyTemplateForLength(n int) (*tink_go_proto.KeyTemplate, error) {
	if !subtle.ValidKeySize(n) {
		return nil, fmt.Errorf("invalid key size: %d bytes (must be 16, 24, or 32)", n)
	}
	return keyTemplate(byte(n)), nil
}

func keyTemplate(size byte) *tink_go_proto.KeyTemplate {
	return &tink_go_proto.KeyTemplate{
		TypeUrl:          AESCBCKeyTypeURL,
		Value:            []byte{size},
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
}

// NewKeysetHandleFromKey wraps a raw AES key (16, 24 or 32 bytes) in a
// single-key keyset handle.
//
// The keyset is unencrypted. Persist it with keyset.Write and an AEAD in
// production.
func NewKeysetHandleFromKey(key []byte) (*keyset.Handle, error) {
	if !subtle.ValidKeySize(len(key)) {
		return nil, fmt.Errorf("invalid key size: %d bytes (must be 16, 24, or 32)", len(key))
	}

	keyIDBytes := make([]byte, 4)
	if _, err := rand.Read(keyIDBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}
	keyID := binary.BigEndian.Uint32(keyIDBytes)
	if keyID == 0 {
		keyID = 1
	}

	ks := &tink_go_proto.Keyset{
		PrimaryKeyId: keyID,
		Key: []*tink_go_proto.Keyset_Key{{
			KeyData: &tink_go_proto.KeyData{
				TypeUrl:         AESCBCKeyTypeURL,
				Value:           append([]byte(nil), key...),
				KeyMaterialType: keyMaterialSymmetric,
			},
			KeyId:            keyID,
			Status:           tink_go_proto.KeyStatusType_ENABLED,
			OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
		}},
	}

	return insecurecleartextkeyset.Read(&keyset.MemReaderWriter{Keyset: ks})
}

// NewKeysetHandleFromHex is NewKeysetHandleFromKey for a hex-encoded key.
func NewKeysetHandleFromHex(keyHex string) (*keyset.Handle, error) {
	key, err := aescbc.RawKey(keyHex)
	if err != nil {
		return nil, err
	}
	return NewKeysetHandleFromKey(key)
}
