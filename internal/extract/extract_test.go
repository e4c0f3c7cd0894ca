package extract_test

import (
	"errors"
	"testing"

	"github.com/caseark/caseark/internal/extract"
)

func TestRequest_Validate(t *testing.T) {
	req := extract.Request{
		DocumentPath: "/drive/Case 1/contract.pdf",
		CasePath:     "/drive/Case 1",
		FolderName:   "contract pages",
		Pages:        []string{"1-3"},
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestRequest_Validate_DefaultFolderName(t *testing.T) {
	req := extract.Request{
		DocumentPath: "/drive/Case 1/contract.pdf",
		CasePath:     "/drive/Case 1",
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if req.FolderName != "contract pages" {
		t.Errorf("default folder name = %q, want %q", req.FolderName, "contract pages")
	}
}

func TestRequest_Validate_Rejections(t *testing.T) {
	invalid := []extract.Request{
		{DocumentPath: "../contract.pdf", CasePath: "/drive/Case 1"},
		{DocumentPath: "/drive/Case 1/scan.png", CasePath: "/drive/Case 1"},
		{DocumentPath: "/drive/Case 1/contract.pdf", CasePath: "~/cases"},
		{DocumentPath: "/drive/Case 1/contract.pdf", CasePath: "/drive/Case 1", FolderName: "bad|name"},
	}
	for i, req := range invalid {
		if err := req.Validate(); !errors.Is(err, extract.ErrInvalidRequest) {
			t.Errorf("Validate(#%d) error = %v, want ErrInvalidRequest", i, err)
		}
	}
}
