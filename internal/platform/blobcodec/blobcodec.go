// Package blobcodec serializa grafos de objetos Go a un blob binario opaco (gob).
// Sin cabecera de versión: cambiar los tipos rompe los blobs viejos.
package blobcodec

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
)

var ErrDecode = errors.New("blobcodec: decode failed")

func Write(w io.Writer, v any) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("blobcodec: encode: %w", err)
	}
	return nil
}

// Read decodifica exactamente un valor. Blob vacío, truncado o de otro tipo
// devuelven ErrDecode.
func Read(r io.Reader, v any) error {
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(b []byte, v any) error {
	return Read(bytes.NewReader(b), v)
}
