package ipk_test

import (
	"testing"

	"github.com/hashicorp/go-ipk"
)

func TestNewPackage(t *testing.T) {
	p := ipk.NewPackage("/var/cache/opkg/demo_1.0_all.ipk")

	if p.Name != "demo_1.0_all.ipk" {
		t.Errorf("Name = %q, want %q", p.Name, "demo_1.0_all.ipk")
	}
	if p.Path != "/var/cache/opkg/demo_1.0_all.ipk" {
		t.Errorf("Path = %q, want %q", p.Path, "/var/cache/opkg/demo_1.0_all.ipk")
	}
	if p.String() != "demo_1.0_all.ipk" {
		t.Errorf("String() = %q, want %q", p.String(), "demo_1.0_all.ipk")
	}
}

func TestPackageString(t *testing.T) {
	p := &ipk.Package{Path: "/tmp/unnamed.ipk"}
	if p.String() != "/tmp/unnamed.ipk" {
		t.Errorf("String() = %q, want %q", p.String(), "/tmp/unnamed.ipk")
	}
}
