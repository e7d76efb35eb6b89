package scrape

import (
	"context"
	"io"
)

// RowSource trae filas crudas (header -> celda) desde una URL externa.
// Los fallos se devuelven al caller tal cual; el núcleo no reintenta.
type RowSource interface {
	Fetch(ctx context.Context, url string) ([]map[string]string, error)
}

// FileParser convierte un archivo subido en las mismas filas crudas,
// eligiendo el formato por la extensión del nombre.
type FileParser interface {
	ParseRows(name string, r io.Reader) ([]map[string]string, error)
}
