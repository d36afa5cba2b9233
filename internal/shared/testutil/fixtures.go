package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SalesExport is a small Latin-1 export: European numbers, one garbled
// customer name (0xA2) and one row without prior-year sales.
const SalesExport = "Vendedor,No_cliente,Cliente,Familia,Tipo,Jan_ac,Fev_ac,Acum_ac,Acum_aa,Per_acum\n" +
	"Ana,101,Loja Norte,Bebidas,Retalho,\"600,00\",\"400,00\",\"1.000,00\",\"500,00\",\"12,5\"\n" +
	"Ana,102,Loja S\xa2l,Bebidas,,100,200,300,0,4\n"

// BadNumberExport has a monthly value that is not a number.
const BadNumberExport = "Vendedor,No_cliente,Cliente,Familia,Tipo,Jan_ac,Acum_ac,Acum_aa,Per_acum\n" +
	"Ana,1,X,F,T,abc,1,1,1\n"

// WriteExport writes data as name inside dir and returns its path.
func WriteExport(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
