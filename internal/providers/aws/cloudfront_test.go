// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/stretchr/testify/require"

	"github.com/laminarhq/laminar/internal/planning"
	"github.com/laminarhq/laminar/internal/planning/validation"
	"github.com/laminarhq/laminar/internal/schema"
)

func compiledPlan(t *testing.T, routes []string) *schema.CanonicalPlan {
	t.Helper()

	fw := schema.Framework{
		Name:           "solidstart",
		AssetsDir:      "client",
		ServerDir:      "server",
		Handler:        "index.handler",
		InternalPrefix: "_server/*",
	}
	md := &schema.BuildMetadata{AssetsPath: "client", StaticRoutes: routes}

	canonical, err := validation.Validate(planning.NewPlanner(fw).Compile("/site/dist", md))
	require.NoError(t, err)
	return canonical
}

var testDomains = map[string]string{
	"server": "abc.lambda-url.us-east-1.on.aws",
	"assets": "laminar-web-assets.s3.us-east-1.amazonaws.com",
}

var testFunctionARNs = map[string]string{
	"serverCfFunction": "arn:aws:cloudfront::123:function/web-serverCfFunction",
}

func TestDistributionConfigPreservesBehaviorOrder(t *testing.T) {
	plan := compiledPlan(t, []string{"index.html", "images/*"})

	conf, err := distributionConfig("web", plan, testDomains, testFunctionARNs)
	require.NoError(t, err)

	// The pattern-less behavior becomes the distribution default; the rest
	// keep plan order, which is precedence order.
	require.NotNil(t, conf.DefaultCacheBehavior)
	require.Equal(t, "server", *conf.DefaultCacheBehavior.TargetOriginId)

	require.EqualValues(t, 3, *conf.CacheBehaviors.Quantity)
	items := conf.CacheBehaviors.Items
	require.Equal(t, "_server/*", *items[0].PathPattern)
	require.Equal(t, "index.html", *items[1].PathPattern)
	require.Equal(t, "images/*", *items[2].PathPattern)
}

func TestDistributionConfigCachePolicies(t *testing.T) {
	plan := compiledPlan(t, []string{"assets/*"})

	conf, err := distributionConfig("web", plan, testDomains, testFunctionARNs)
	require.NoError(t, err)

	require.Equal(t, serverCachePolicy, *conf.DefaultCacheBehavior.CachePolicyId)
	require.Equal(t, serverCachePolicy, *conf.CacheBehaviors.Items[0].CachePolicyId)
	require.Equal(t, staticCachePolicy, *conf.CacheBehaviors.Items[1].CachePolicyId)
	require.Nil(t, conf.CacheBehaviors.Items[1].OriginRequestPolicyId)
}

func TestDistributionConfigFunctionAssociations(t *testing.T) {
	plan := compiledPlan(t, nil)

	conf, err := distributionConfig("web", plan, testDomains, testFunctionARNs)
	require.NoError(t, err)

	assoc := conf.DefaultCacheBehavior.FunctionAssociations
	require.NotNil(t, assoc)
	require.Equal(t, testFunctionARNs["serverCfFunction"], *assoc.Items[0].FunctionARN)

	// Static behaviors carry no function.
	for _, item := range conf.CacheBehaviors.Items[1:] {
		require.Nil(t, item.FunctionAssociations)
	}
}

func TestDistributionConfigMissingOriginDomain(t *testing.T) {
	plan := compiledPlan(t, nil)

	_, err := distributionConfig("web", plan, map[string]string{"server": "x"}, testFunctionARNs)
	require.Error(t, err)
	require.Contains(t, err.Error(), `"assets"`)
}

// fakeFunctionsAPI reports FunctionAlreadyExists for names in existing,
// recording which path each function took.
type fakeFunctionsAPI struct {
	existing map[string]bool

	created       []string
	updated       []string
	published     []string
	publishedWith []string
}

func (f *fakeFunctionsAPI) CreateFunction(ctx context.Context, in *cloudfront.CreateFunctionInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateFunctionOutput, error) {
	if f.existing[*in.Name] {
		return nil, &types.FunctionAlreadyExists{Message: aws.String(*in.Name)}
	}
	f.created = append(f.created, *in.Name)
	return &cloudfront.CreateFunctionOutput{
		ETag:            aws.String("E-created"),
		FunctionSummary: functionSummary(*in.Name),
	}, nil
}

func (f *fakeFunctionsAPI) DescribeFunction(ctx context.Context, in *cloudfront.DescribeFunctionInput, _ ...func(*cloudfront.Options)) (*cloudfront.DescribeFunctionOutput, error) {
	return &cloudfront.DescribeFunctionOutput{
		ETag:            aws.String("E-described"),
		FunctionSummary: functionSummary(*in.Name),
	}, nil
}

func (f *fakeFunctionsAPI) UpdateFunction(ctx context.Context, in *cloudfront.UpdateFunctionInput, _ ...func(*cloudfront.Options)) (*cloudfront.UpdateFunctionOutput, error) {
	if in.IfMatch == nil || *in.IfMatch != "E-described" {
		return nil, &types.PreconditionFailed{}
	}
	f.updated = append(f.updated, *in.Name)
	return &cloudfront.UpdateFunctionOutput{
		ETag:            aws.String("E-updated"),
		FunctionSummary: functionSummary(*in.Name),
	}, nil
}

func (f *fakeFunctionsAPI) PublishFunction(ctx context.Context, in *cloudfront.PublishFunctionInput, _ ...func(*cloudfront.Options)) (*cloudfront.PublishFunctionOutput, error) {
	f.published = append(f.published, *in.Name)
	f.publishedWith = append(f.publishedWith, aws.ToString(in.IfMatch))
	return &cloudfront.PublishFunctionOutput{FunctionSummary: functionSummary(*in.Name)}, nil
}

func functionSummary(name string) *types.FunctionSummary {
	return &types.FunctionSummary{
		Name: aws.String(name),
		FunctionMetadata: &types.FunctionMetadata{
			FunctionARN: aws.String("arn:aws:cloudfront::123:function/" + name),
		},
	}
}

func TestPublishFunctionsFirstDeployCreates(t *testing.T) {
	plan := compiledPlan(t, nil)
	fake := &fakeFunctionsAPI{}

	arns, err := publishFunctions(t.Context(), fake, "web", plan)
	require.NoError(t, err)

	require.Equal(t, []string{"web-serverCfFunction"}, fake.created)
	require.Empty(t, fake.updated)
	require.Equal(t, []string{"web-serverCfFunction"}, fake.published)
	require.Equal(t, []string{"E-created"}, fake.publishedWith)
	require.Contains(t, arns["serverCfFunction"], "web-serverCfFunction")
}

func TestPublishFunctionsRedeployUpdatesInPlace(t *testing.T) {
	plan := compiledPlan(t, nil)
	fake := &fakeFunctionsAPI{existing: map[string]bool{"web-serverCfFunction": true}}

	arns, err := publishFunctions(t.Context(), fake, "web", plan)
	require.NoError(t, err)

	require.Empty(t, fake.created)
	require.Equal(t, []string{"web-serverCfFunction"}, fake.updated)
	// The publish must match the update's stage, not the described one.
	require.Equal(t, []string{"E-updated"}, fake.publishedWith)
	require.Contains(t, arns["serverCfFunction"], "web-serverCfFunction")
}

// fakeDistributionsAPI holds at most one pre-existing distribution.
type fakeDistributionsAPI struct {
	existingID      string
	existingComment string
	existingRef     string

	updated *cloudfront.UpdateDistributionInput
}

func (f *fakeDistributionsAPI) CreateDistribution(ctx context.Context, in *cloudfront.CreateDistributionInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateDistributionOutput, error) {
	if f.existingID != "" {
		return nil, &types.DistributionAlreadyExists{Message: aws.String(f.existingID)}
	}
	return &cloudfront.CreateDistributionOutput{
		Distribution: &types.Distribution{
			Id:         aws.String("E-NEW"),
			DomainName: aws.String("new.cloudfront.net"),
		},
	}, nil
}

func (f *fakeDistributionsAPI) ListDistributions(ctx context.Context, in *cloudfront.ListDistributionsInput, _ ...func(*cloudfront.Options)) (*cloudfront.ListDistributionsOutput, error) {
	return &cloudfront.ListDistributionsOutput{
		DistributionList: &types.DistributionList{
			IsTruncated: aws.Bool(false),
			Items: []types.DistributionSummary{{
				Id:      aws.String(f.existingID),
				Comment: aws.String(f.existingComment),
			}},
		},
	}, nil
}

func (f *fakeDistributionsAPI) GetDistributionConfig(ctx context.Context, in *cloudfront.GetDistributionConfigInput, _ ...func(*cloudfront.Options)) (*cloudfront.GetDistributionConfigOutput, error) {
	return &cloudfront.GetDistributionConfigOutput{
		ETag: aws.String("E-dist"),
		DistributionConfig: &types.DistributionConfig{
			CallerReference: aws.String(f.existingRef),
		},
	}, nil
}

func (f *fakeDistributionsAPI) UpdateDistribution(ctx context.Context, in *cloudfront.UpdateDistributionInput, _ ...func(*cloudfront.Options)) (*cloudfront.UpdateDistributionOutput, error) {
	f.updated = in
	return &cloudfront.UpdateDistributionOutput{
		Distribution: &types.Distribution{
			Id:         in.Id,
			DomainName: aws.String("existing.cloudfront.net"),
		},
	}, nil
}

func TestEnsureDistributionRedeployUpdatesExisting(t *testing.T) {
	plan := compiledPlan(t, nil)
	conf, err := distributionConfig("web", plan, testDomains, testFunctionARNs)
	require.NoError(t, err)

	fake := &fakeDistributionsAPI{
		existingID:      "E2EXISTING",
		existingComment: "laminar site web",
		existingRef:     "laminar-web-v0",
	}

	dist, err := ensureDistribution(t.Context(), fake, "web", conf)
	require.NoError(t, err)
	require.Equal(t, "E2EXISTING", *dist.Id)

	require.NotNil(t, fake.updated)
	require.Equal(t, "E2EXISTING", *fake.updated.Id)
	require.Equal(t, "E-dist", *fake.updated.IfMatch)
	// The original caller reference is immutable and must carry over.
	require.Equal(t, "laminar-web-v0", *fake.updated.DistributionConfig.CallerReference)
}

func TestEnsureDistributionFirstDeployCreates(t *testing.T) {
	plan := compiledPlan(t, nil)
	conf, err := distributionConfig("web", plan, testDomains, testFunctionARNs)
	require.NoError(t, err)

	fake := &fakeDistributionsAPI{}
	dist, err := ensureDistribution(t.Context(), fake, "web", conf)
	require.NoError(t, err)
	require.Equal(t, "E-NEW", *dist.Id)
	require.Nil(t, fake.updated)
}

func TestAssembleFunctionCode(t *testing.T) {
	code := assembleFunctionCode([]schema.CodeInjection{
		{Name: "hostHeaderRewrite", Code: `request.headers["x-forwarded-host"] = request.headers.host;`},
	})

	require.Contains(t, code, "function handler(event)")
	require.Contains(t, code, `x-forwarded-host`)
	require.Contains(t, code, "return request;")
}
