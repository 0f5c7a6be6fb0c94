// Package aws contributes AWS resource schemas.
//
// The schemas cover the attribute surface needed by the dependency core;
// they are not a complete catalog of AWS resources.
package aws

import (
	"github.com/weft/weft/resource/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider contributes AWS resource capabilities.
type Provider struct{}

// Namespace returns aws.
func (p *Provider) Namespace() string { return "aws" }

// Resources returns the supported resource schemas.
func (p *Provider) Resources() map[string]*schema.Schema {
	return map[string]*schema.Schema{
		"aws_vpc": {
			Fields: map[string]schema.Field{
				"cidr_block": {
					Type:     cty.String,
					Required: true,
					Rules:    "cidrv4",
				},
				"enable_dns_support": {
					Type:    cty.Bool,
					Default: cty.True,
				},
				"tags": {
					Type: cty.Map(cty.String),
				},
			},
			Outputs: []string{"id", "arn", "default_route_table_id"},
		},
		"aws_subnet": {
			Fields: map[string]schema.Field{
				"vpc_id": {
					Type:     cty.String,
					Required: true,
				},
				"cidr_block": {
					Type:     cty.String,
					Required: true,
					Rules:    "cidrv4",
				},
				"availability_zone": {
					Type: cty.String,
				},
			},
			Outputs: []string{"id", "arn"},
		},
		"aws_iam_role": {
			Fields: map[string]schema.Field{
				"name": {
					Type:     cty.String,
					Required: true,
					Rules:    "min=1,max=64",
				},
				"assume_role_policy": {
					Type:     cty.String,
					Required: true,
				},
				"permissions_boundary": {
					Type:  cty.String,
					Rules: "arn",
				},
			},
			Outputs: []string{"id", "arn", "unique_id"},
		},
		"aws_sqs_queue": {
			Fields: map[string]schema.Field{
				"name": {
					Type:     cty.String,
					Required: true,
					Rules:    "min=1,max=80",
				},
				"visibility_timeout_seconds": {
					Type:    cty.Number,
					Default: cty.NumberIntVal(30),
					Rules:   "gte=0,lte=43200",
				},
				"fifo_queue": {
					Type:    cty.Bool,
					Default: cty.False,
				},
			},
			Outputs: []string{"id", "arn", "url"},
		},
	}
}
