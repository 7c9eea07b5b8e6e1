// Package ssmpath builds parameter names in the public SSM global-infrastructure
// namespace.
package ssmpath

import (
	"strings"
)

// Root is the base of the public global-infrastructure hierarchy.
const Root = "/aws/service/global-infrastructure"

// Regions returns the path listing every region.
func Regions() string {
	return Root + "/regions"
}

// Services returns the path listing every service available in region.
func Services(region string) string {
	return Root + "/regions/" + region + "/services"
}

// Endpoint returns the parameter name holding the endpoint hostname of service
// in region.
func Endpoint(region, service string) string {
	return Services(region) + "/" + service + "/endpoint"
}

// ParseEndpoint extracts region and service from an endpoint parameter name.
// ok is false when name is not an endpoint parameter.
func ParseEndpoint(name string) (region, service string, ok bool) {
	rest, found := strings.CutPrefix(name, Root+"/regions/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 4 || parts[1] != "services" || parts[3] != "endpoint" {
		return "", "", false
	}
	if parts[0] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[0], parts[2], true
}
