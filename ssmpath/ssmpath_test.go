package ssmpath

import "testing"

func TestPaths(t *testing.T) {
	if got := Regions(); got != "/aws/service/global-infrastructure/regions" {
		t.Errorf("unexpected regions path: %s", got)
	}
	if got := Services("us-east-1"); got != "/aws/service/global-infrastructure/regions/us-east-1/services" {
		t.Errorf("unexpected services path: %s", got)
	}
	want := "/aws/service/global-infrastructure/regions/us-east-1/services/s3/endpoint"
	if got := Endpoint("us-east-1", "s3"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParseEndpoint(t *testing.T) {
	testCases := []struct {
		name    string
		region  string
		service string
		ok      bool
	}{
		{Endpoint("eu-west-1", "ec2"), "eu-west-1", "ec2", true},
		{"/aws/service/global-infrastructure/regions/eu-west-1/services/ec2", "", "", false},
		{"/aws/service/global-infrastructure/regions/eu-west-1/services/ec2/longName", "", "", false},
		{"/other/regions/eu-west-1/services/ec2/endpoint", "", "", false},
		{"/aws/service/global-infrastructure/regions//services/ec2/endpoint", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			region, service, ok := ParseEndpoint(tc.name)
			if ok != tc.ok || region != tc.region || service != tc.service {
				t.Errorf("ParseEndpoint(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tc.name, region, service, ok, tc.region, tc.service, tc.ok)
			}
		})
	}
}
