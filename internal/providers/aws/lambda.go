// Copyright 2024 Laminar Inc; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package aws

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"

	"github.com/laminarhq/laminar/internal/fnerrors"
	"github.com/laminarhq/laminar/internal/fnfs"
	"github.com/laminarhq/laminar/internal/schema"
)

const lambdaTrustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"Service": ["lambda.amazonaws.com", "edgelambda.amazonaws.com"]},
    "Action": "sts:AssumeRole"
  }]
}`

const basicExecutionRolePolicy = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"

// zipBundle packages a server bundle directory for upload.
func zipBundle(bundle string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	err := fnfs.VisitFiles(context.Background(), fnfs.Local(bundle), func(path string, blob fnfs.ByteStream, _ fs.DirEntry) error {
		f, err := w.Create(path)
		if err != nil {
			return err
		}

		r, err := blob.Reader()
		if err != nil {
			return err
		}
		defer r.Close()

		_, err = io.Copy(f, r)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ensureServerRole creates (or reuses) the execution role the site's server
// functions run as.
func ensureServerRole(ctx context.Context, client *iam.Client, site string) (string, error) {
	roleName := fmt.Sprintf("laminar-%s-server", site)

	created, err := client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(roleName),
		AssumeRolePolicyDocument: aws.String(lambdaTrustPolicy),
		Description:              aws.String("laminar server function execution role"),
	})
	if err == nil {
		if _, err := client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
			RoleName:  aws.String(roleName),
			PolicyArn: aws.String(basicExecutionRolePolicy),
		}); err != nil {
			return "", fnerrors.InvocationError("failed to attach execution policy: %w", err)
		}
		return *created.Role.Arn, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "EntityAlreadyExists" {
		existing, err := client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
		if err != nil {
			return "", fnerrors.InvocationError("failed to look up role %q: %w", roleName, err)
		}
		return *existing.Role.Arn, nil
	}

	return "", fnerrors.InvocationError("failed to create role %q: %w", roleName, err)
}

// createServer provisions one compute origin as a lambda with a public
// function URL, returning its ARN and the URL's hostname for use as a CDN
// origin domain.
func createServer(ctx context.Context, client *lambda.Client, site, name string, origin schema.ComputeOrigin, roleArn string) (string, string, error) {
	code, err := zipBundle(origin.Bundle)
	if err != nil {
		return "", "", fnerrors.New("failed to package %q: %w", origin.Bundle, err)
	}

	functionName := fmt.Sprintf("laminar-%s-%s", site, name)

	created, err := client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(functionName),
		Role:         aws.String(roleArn),
		Runtime:      types.RuntimeNodejs20x,
		Handler:      aws.String(origin.Handler),
		Code:         &types.FunctionCode{ZipFile: code},
		Description:  aws.String(origin.Description),
		MemorySize:   aws.Int32(1024),
		Timeout:      aws.Int32(30),
	})
	if err != nil {
		var conflict *types.ResourceConflictException
		if !errors.As(err, &conflict) {
			return "", "", fnerrors.InvocationError("failed to create function %q: %w", functionName, err)
		}

		if _, err := client.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
			FunctionName: aws.String(functionName),
			ZipFile:      code,
		}); err != nil {
			return "", "", fnerrors.InvocationError("failed to update function %q: %w", functionName, err)
		}
	}

	// created is nil when we took the update path above.
	if created == nil {
		got, err := client.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(functionName)})
		if err != nil {
			return "", "", fnerrors.InvocationError("failed to fetch function %q: %w", functionName, err)
		}
		created = &lambda.CreateFunctionOutput{FunctionArn: got.Configuration.FunctionArn}
	}

	urlConf, err := ensureFunctionUrl(ctx, client, functionName)
	if err != nil {
		return "", "", err
	}

	parsed, err := url.Parse(urlConf)
	if err != nil {
		return "", "", fnerrors.InternalError("unparsable function url %q: %w", urlConf, err)
	}

	return *created.FunctionArn, parsed.Host, nil
}

func ensureFunctionUrl(ctx context.Context, client *lambda.Client, functionName string) (string, error) {
	created, err := client.CreateFunctionUrlConfig(ctx, &lambda.CreateFunctionUrlConfigInput{
		FunctionName: aws.String(functionName),
		AuthType:     types.FunctionUrlAuthTypeNone,
	})
	if err == nil {
		if _, err := client.AddPermission(ctx, &lambda.AddPermissionInput{
			FunctionName:        aws.String(functionName),
			StatementId:         aws.String("laminar-public-url"),
			Action:              aws.String("lambda:InvokeFunctionUrl"),
			Principal:           aws.String("*"),
			FunctionUrlAuthType: types.FunctionUrlAuthTypeNone,
		}); err != nil {
			return "", fnerrors.InvocationError("failed to open function url: %w", err)
		}
		return *created.FunctionUrl, nil
	}

	var conflict *types.ResourceConflictException
	if errors.As(err, &conflict) {
		existing, err := client.GetFunctionUrlConfig(ctx, &lambda.GetFunctionUrlConfigInput{
			FunctionName: aws.String(functionName),
		})
		if err != nil {
			return "", fnerrors.InvocationError("failed to fetch function url: %w", err)
		}
		return *existing.FunctionUrl, nil
	}

	return "", fnerrors.InvocationError("failed to create function url: %w", err)
}

// waitActive blocks until the function leaves Pending; function URLs only
// serve once active.
func waitActive(ctx context.Context, client *lambda.Client, functionName string) error {
	waiter := lambda.NewFunctionActiveV2Waiter(client)
	return waiter.Wait(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(functionName),
	}, 2*time.Minute)
}
