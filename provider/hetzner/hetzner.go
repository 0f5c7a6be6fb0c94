// Package hetzner contributes Hetzner Cloud resource schemas.
package hetzner

import (
	"github.com/weft/weft/resource/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider contributes Hetzner Cloud resource capabilities.
type Provider struct{}

// Namespace returns hcloud.
func (p *Provider) Namespace() string { return "hcloud" }

// Resources returns the supported resource schemas.
func (p *Provider) Resources() map[string]*schema.Schema {
	return map[string]*schema.Schema{
		"hcloud_network": {
			Fields: map[string]schema.Field{
				"name": {
					Type:     cty.String,
					Required: true,
					Rules:    "min=1,max=63",
				},
				"ip_range": {
					Type:     cty.String,
					Required: true,
					Rules:    "cidrv4",
				},
			},
			Outputs: []string{"id"},
		},
		"hcloud_server": {
			Fields: map[string]schema.Field{
				"name": {
					Type:     cty.String,
					Required: true,
					Rules:    "min=1,max=63",
				},
				"server_type": {
					Type:     cty.String,
					Required: true,
					Rules:    "oneof=cx11 cx21 cx31 cx41 cx51",
				},
				"image": {
					Type:     cty.String,
					Required: true,
				},
				"location": {
					Type:  cty.String,
					Rules: "oneof=fsn1 nbg1 hel1",
				},
				"backups": {
					Type:    cty.Bool,
					Default: cty.False,
				},
			},
			Outputs: []string{"id", "ipv4_address", "ipv6_address", "status"},
		},
	}
}
