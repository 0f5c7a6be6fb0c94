// Package cloudflare contributes Cloudflare resource schemas.
package cloudflare

import (
	"github.com/weft/weft/resource/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider contributes Cloudflare resource capabilities.
type Provider struct{}

// Namespace returns cloudflare.
func (p *Provider) Namespace() string { return "cloudflare" }

// Resources returns the supported resource schemas.
func (p *Provider) Resources() map[string]*schema.Schema {
	return map[string]*schema.Schema{
		"cloudflare_zone": {
			Fields: map[string]schema.Field{
				"zone": {
					Type:     cty.String,
					Required: true,
					Rules:    "fqdn",
				},
				"plan": {
					Type:    cty.String,
					Default: cty.StringVal("free"),
					Rules:   "oneof=free pro business enterprise",
				},
				"paused": {
					Type:    cty.Bool,
					Default: cty.False,
				},
			},
			Outputs: []string{"id", "name_servers", "status"},
		},
		"cloudflare_record": {
			Fields: map[string]schema.Field{
				"zone_id": {
					Type:     cty.String,
					Required: true,
				},
				"name": {
					Type:     cty.String,
					Required: true,
				},
				"type": {
					Type:     cty.String,
					Required: true,
					Rules:    "oneof=A AAAA CNAME TXT MX NS SRV",
				},
				"value": {
					Type:     cty.String,
					Required: true,
				},
				"ttl": {
					Type:    cty.Number,
					Default: cty.NumberIntVal(1), // 1 = automatic
					Rules:   "gte=1,lte=86400",
				},
			},
			Outputs: []string{"id", "hostname", "proxiable"},
		},
	}
}
