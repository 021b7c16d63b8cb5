// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/laminarhq/laminar/internal/fnerrors"
	"github.com/laminarhq/laminar/internal/schema"
)

// The slices of the CloudFront API the helpers below touch;
// *cloudfront.Client satisfies both.
type cloudfrontFunctionsAPI interface {
	CreateFunction(context.Context, *cloudfront.CreateFunctionInput, ...func(*cloudfront.Options)) (*cloudfront.CreateFunctionOutput, error)
	DescribeFunction(context.Context, *cloudfront.DescribeFunctionInput, ...func(*cloudfront.Options)) (*cloudfront.DescribeFunctionOutput, error)
	UpdateFunction(context.Context, *cloudfront.UpdateFunctionInput, ...func(*cloudfront.Options)) (*cloudfront.UpdateFunctionOutput, error)
	PublishFunction(context.Context, *cloudfront.PublishFunctionInput, ...func(*cloudfront.Options)) (*cloudfront.PublishFunctionOutput, error)
}

type cloudfrontDistributionsAPI interface {
	CreateDistribution(context.Context, *cloudfront.CreateDistributionInput, ...func(*cloudfront.Options)) (*cloudfront.CreateDistributionOutput, error)
	ListDistributions(context.Context, *cloudfront.ListDistributionsInput, ...func(*cloudfront.Options)) (*cloudfront.ListDistributionsOutput, error)
	GetDistributionConfig(context.Context, *cloudfront.GetDistributionConfigInput, ...func(*cloudfront.Options)) (*cloudfront.GetDistributionConfigOutput, error)
	UpdateDistribution(context.Context, *cloudfront.UpdateDistributionInput, ...func(*cloudfront.Options)) (*cloudfront.UpdateDistributionOutput, error)
}

// AWS-managed policies; referencing them avoids owning policy resources.
const (
	// CachingOptimized.
	staticCachePolicy = "658327ea-f89d-4fab-a63d-7e88639e58f6"
	// CachingDisabled: server-rendered responses revalidate per request.
	serverCachePolicy = "4135ea2d-6df8-44a3-9df3-4b5a84be39ad"
	// AllViewerExceptHostHeader: forwards everything the function needs;
	// the host header itself travels via the x-forwarded-host rewrite.
	serverOriginRequestPolicy = "b689b0a8-53d0-40ab-baf2-68738e2966ac"
)

// assembleFunctionCode splices the plan's injections into a CloudFront
// Function body. Injection order follows the plan.
func assembleFunctionCode(injections []schema.CodeInjection) string {
	var body strings.Builder
	body.WriteString("function handler(event) {\n")
	body.WriteString("  var request = event.request;\n")
	for _, inj := range injections {
		body.WriteString("  " + inj.Code + "\n")
	}
	body.WriteString("  return request;\n")
	body.WriteString("}\n")
	return body.String()
}

// publishFunctions stages one CloudFront Function per entry in the plan
// (creating or updating, so repeated deploys converge) and returns their
// ARNs keyed by plan name.
func publishFunctions(ctx context.Context, client cloudfrontFunctionsAPI, site string, plan *schema.CanonicalPlan) (map[string]string, error) {
	arns := map[string]string{}

	names := make([]string, 0, len(plan.CloudFrontFunctions))
	for name := range plan.CloudFrontFunctions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fullName := fmt.Sprintf("%s-%s", site, name)
		code := []byte(assembleFunctionCode(plan.CloudFrontFunctions[name]))
		conf := &types.FunctionConfig{
			Comment: aws.String(fmt.Sprintf("laminar %s/%s", site, name)),
			Runtime: types.FunctionRuntimeCloudfrontJs20,
		}

		etag, arn, err := ensureFunction(ctx, client, fullName, code, conf)
		if err != nil {
			return nil, fnerrors.InvocationError("failed to stage cloudfront function %q: %w", name, err)
		}

		if _, err := client.PublishFunction(ctx, &cloudfront.PublishFunctionInput{
			Name:    aws.String(fullName),
			IfMatch: etag,
		}); err != nil {
			return nil, fnerrors.InvocationError("failed to publish cloudfront function %q: %w", name, err)
		}

		arns[name] = arn
	}

	return arns, nil
}

// ensureFunction writes the function's development stage and returns the
// ETag the publish must match. A function left behind by an earlier deploy
// is updated in place.
func ensureFunction(ctx context.Context, client cloudfrontFunctionsAPI, name string, code []byte, conf *types.FunctionConfig) (*string, string, error) {
	created, err := client.CreateFunction(ctx, &cloudfront.CreateFunctionInput{
		Name:           aws.String(name),
		FunctionCode:   code,
		FunctionConfig: conf,
	})
	if err == nil {
		return created.ETag, *created.FunctionSummary.FunctionMetadata.FunctionARN, nil
	}

	var exists *types.FunctionAlreadyExists
	if !errors.As(err, &exists) {
		return nil, "", err
	}

	desc, err := client.DescribeFunction(ctx, &cloudfront.DescribeFunctionInput{Name: aws.String(name)})
	if err != nil {
		return nil, "", err
	}

	updated, err := client.UpdateFunction(ctx, &cloudfront.UpdateFunctionInput{
		Name:           aws.String(name),
		IfMatch:        desc.ETag,
		FunctionCode:   code,
		FunctionConfig: conf,
	})
	if err != nil {
		return nil, "", err
	}

	return updated.ETag, *updated.FunctionSummary.FunctionMetadata.FunctionARN, nil
}

// ensureDistribution creates the site's distribution, or updates the one a
// previous deploy created: the caller reference is fixed per site, so a
// second create reports DistributionAlreadyExists.
func ensureDistribution(ctx context.Context, client cloudfrontDistributionsAPI, site string, conf *types.DistributionConfig) (*types.Distribution, error) {
	created, err := client.CreateDistribution(ctx, &cloudfront.CreateDistributionInput{
		DistributionConfig: conf,
	})
	if err == nil {
		return created.Distribution, nil
	}

	var exists *types.DistributionAlreadyExists
	if !errors.As(err, &exists) {
		return nil, fnerrors.InvocationError("failed to create distribution: %w", err)
	}

	id, err := findDistribution(ctx, client, distributionComment(site))
	if err != nil {
		return nil, err
	}

	got, err := client.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{Id: aws.String(id)})
	if err != nil {
		return nil, fnerrors.InvocationError("failed to fetch distribution %q: %w", id, err)
	}

	// The caller reference is immutable once set; carry the existing one.
	conf.CallerReference = got.DistributionConfig.CallerReference

	updated, err := client.UpdateDistribution(ctx, &cloudfront.UpdateDistributionInput{
		Id:                 aws.String(id),
		IfMatch:            got.ETag,
		DistributionConfig: conf,
	})
	if err != nil {
		return nil, fnerrors.InvocationError("failed to update distribution %q: %w", id, err)
	}

	return updated.Distribution, nil
}

// findDistribution resolves a site's distribution ID by the comment we
// stamp on it; summaries don't expose caller references.
func findDistribution(ctx context.Context, client cloudfrontDistributionsAPI, comment string) (string, error) {
	var marker *string
	for {
		page, err := client.ListDistributions(ctx, &cloudfront.ListDistributionsInput{Marker: marker})
		if err != nil {
			return "", fnerrors.InvocationError("failed to list distributions: %w", err)
		}

		for _, item := range page.DistributionList.Items {
			if item.Comment != nil && *item.Comment == comment {
				return *item.Id, nil
			}
		}

		if !aws.ToBool(page.DistributionList.IsTruncated) || page.DistributionList.NextMarker == nil {
			return "", fnerrors.InvocationError("no distribution carries comment %q", comment)
		}
		marker = page.DistributionList.NextMarker
	}
}

func distributionComment(site string) string {
	return fmt.Sprintf("laminar site %s", site)
}

// distributionConfig translates the canonical plan into a CloudFront
// distribution. Behavior order is precedence order and is preserved
// verbatim: CloudFront evaluates CacheBehaviors in list order, with the
// pattern-less behavior as the distribution default.
func distributionConfig(site string, plan *schema.CanonicalPlan, originDomains map[string]string, functionARNs map[string]string) (*types.DistributionConfig, error) {
	conf := &types.DistributionConfig{
		CallerReference: aws.String("laminar-" + site),
		Comment:         aws.String(distributionComment(site)),
		Enabled:         aws.Bool(true),
	}

	originNames := make([]string, 0, len(plan.Origins))
	for name := range plan.Origins {
		originNames = append(originNames, name)
	}
	sort.Strings(originNames)

	var origins []types.Origin
	for _, name := range originNames {
		domain, ok := originDomains[name]
		if !ok {
			return nil, fnerrors.InternalError("origin %q was not provisioned", name)
		}

		origin := types.Origin{
			Id:         aws.String(name),
			DomainName: aws.String(domain),
		}
		switch plan.Origins[name].(type) {
		case schema.ComputeOrigin, *schema.ComputeOrigin:
			origin.CustomOriginConfig = &types.CustomOriginConfig{
				HTTPPort:             aws.Int32(80),
				HTTPSPort:            aws.Int32(443),
				OriginProtocolPolicy: types.OriginProtocolPolicyHttpsOnly,
			}
		default:
			origin.S3OriginConfig = &types.S3OriginConfig{
				OriginAccessIdentity: aws.String(""),
			}
		}
		origins = append(origins, origin)
	}
	conf.Origins = &types.Origins{
		Quantity: aws.Int32(int32(len(origins))),
		Items:    origins,
	}

	var ordered []types.CacheBehavior
	for _, b := range plan.Behaviors {
		if b.IsDefault() {
			conf.DefaultCacheBehavior = defaultCacheBehavior(b, functionARNs)
			continue
		}
		ordered = append(ordered, cacheBehavior(b, functionARNs))
	}
	conf.CacheBehaviors = &types.CacheBehaviors{
		Quantity: aws.Int32(int32(len(ordered))),
		Items:    ordered,
	}

	return conf, nil
}

func cacheBehavior(b schema.Behavior, functionARNs map[string]string) types.CacheBehavior {
	behavior := types.CacheBehavior{
		PathPattern:          aws.String(b.Pattern),
		TargetOriginId:       aws.String(b.Origin),
		ViewerProtocolPolicy: types.ViewerProtocolPolicyRedirectToHttps,
		CachePolicyId:        aws.String(cachePolicyFor(b.CacheType)),
	}
	if b.CacheType == schema.CacheServer {
		behavior.OriginRequestPolicyId = aws.String(serverOriginRequestPolicy)
	}
	if arn, ok := functionARNs[b.CfFunction]; ok {
		behavior.FunctionAssociations = functionAssociations(arn)
	}
	return behavior
}

func defaultCacheBehavior(b schema.Behavior, functionARNs map[string]string) *types.DefaultCacheBehavior {
	behavior := &types.DefaultCacheBehavior{
		TargetOriginId:        aws.String(b.Origin),
		ViewerProtocolPolicy:  types.ViewerProtocolPolicyRedirectToHttps,
		CachePolicyId:         aws.String(cachePolicyFor(b.CacheType)),
		OriginRequestPolicyId: aws.String(serverOriginRequestPolicy),
	}
	if arn, ok := functionARNs[b.CfFunction]; ok {
		behavior.FunctionAssociations = functionAssociations(arn)
	}
	return behavior
}

func functionAssociations(arn string) *types.FunctionAssociations {
	return &types.FunctionAssociations{
		Quantity: aws.Int32(1),
		Items: []types.FunctionAssociation{{
			EventType:   types.EventTypeViewerRequest,
			FunctionARN: aws.String(arn),
		}},
	}
}

func cachePolicyFor(ct schema.CacheType) string {
	if ct == schema.CacheStatic {
		return staticCachePolicy
	}
	return serverCachePolicy
}
