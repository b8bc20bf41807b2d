package tinkcbc

import (
	"fmt"
	"testing"

	"github.com/google/tink/go/keyset"
)

func BenchmarkEncrypt(b *testing.B) {
	mustRegister(b)
	iv := make([]byte, 16)
	for _, size := range []int{16, 1024, 64 * 1024} {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			handle, err := keyset.NewHandle(KeyTemplate())
			if err != nil {
				b.Fatal(err)
			}
			c, err := New(handle)
			if err != nil {
				b.Fatal(err)
			}
			data := make([]byte, size)
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Encrypt(data, iv); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkKeySizes(b *testing.B) {
	mustRegister(b)
	iv := make([]byte, 16)
	data := make([]byte, 4096)
	for _, n := range []int{16, 24, 32} {
		b.Run(fmt.Sprintf("AES-%d", n*8), func(b *testing.B) {
			tmpl, err := KeyTemplateForLength(n)
			if err != nil {
				b.Fatal(err)
			}
			handle, err := keyset.NewHandle(tmpl)
			if err != nil {
				b.Fatal(err)
			}
			c, err := New(handle)
			if err != nil {
				b.Fatal(err)
			}
			ct, err := c.Encrypt(data, iv)
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Decrypt(ct, iv); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
