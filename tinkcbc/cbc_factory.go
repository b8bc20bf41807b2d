package tinkcbc

import (
	"fmt"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/vdparikh/sbox/aescbc"
)

// New returns the primary AES-CBC cipher of a keyset handle. The KeyManager
// must be registered first (see Register).
//
//	handle, err := keyset.NewHandle(tinkcbc.KeyTemplate())
//	if err != nil {
//		return err
//	}
//	c, err := tinkcbc.New(handle)
//	if err != nil {
//		return err
//	}
//	ct, err := c.Encrypt(plaintext, iv)
func New(handle *keyset.Handle) (aescbc.Cipher, error) {
	if handle == nil {
		return nil, fmt.Errorf("keyset handle cannot be nil")
	}

	primitives, err := handle.Primitives()
	if err != nil {
		return nil, fmt.Errorf("failed to get primitives from handle: %w", err)
	}

	primary := primitives.Primary
	if primary == nil {
		return nil, fmt.Errorf("no primary key found in keyset")
	}

	c, ok := primary.Primitive.(aescbc.Cipher)
	if !ok {
		return nil, fmt.Errorf("primary primitive is %T, not an AES-CBC cipher", primary.Primitive)
	}
	return c, nil
}

// PrimaryKey returns the raw key bytes of the primary key of an unencrypted
// keyset, so it can be handed to the passphrase-free aescbc API as hex.
func PrimaryKey(handle *keyset.Handle) ([]byte, error) {
	if handle == nil {
		return nil, fmt.Errorf("keyset handle cannot be nil")
	}

	ks := insecurecleartextkeyset.KeysetMaterial(handle)
	for _, key := range ks.Key {
		if key.KeyId != ks.PrimaryKeyId {
			continue
		}
		keyData := key.KeyData
		if keyData == nil || keyData.TypeUrl != AESCBCKeyTypeURL {
			break
		}
		if keyData.GetKeyMaterialType() != keyMaterialSymmetric {
			return nil, fmt.Errorf("key %d is not a symmetric key", key.KeyId)
		}
		return append([]byte(nil), keyData.Value...), nil
	}
	return nil, fmt.Errorf("primary key %d not found or not an AES-CBC key", ks.PrimaryKeyId)
}
