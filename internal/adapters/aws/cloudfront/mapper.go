package cloudfront

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/samber/lo"

	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
)

func toDistributionConfig(d *cloudfront.Distribution) *types.DistributionConfig {
	origins := lo.Map(d.Origins, func(o cloudfront.Origin, _ int) types.Origin {
		origin := types.Origin{
			Id:         aws.String(o.ID),
			DomainName: aws.String(o.DomainName),
			OriginPath: aws.String(o.OriginPath),
		}
		if o.S3OriginConfig != nil {
			origin.S3OriginConfig = &types.S3OriginConfig{
				OriginAccessIdentity: aws.String(o.S3OriginConfig.OriginAccessIdentity),
			}
		}
		return origin
	})

	errorResponses := lo.Map(d.CustomErrorResponses, func(r cloudfront.CustomErrorResponse, _ int) types.CustomErrorResponse {
		return types.CustomErrorResponse{
			ErrorCode:          aws.Int32(r.ErrorCode),
			ResponsePagePath:   aws.String(r.ResponsePagePath),
			ResponseCode:       aws.String(r.ResponseCode),
			ErrorCachingMinTTL: aws.Int64(r.ErrorCachingMinTTL),
		}
	})

	behavior := d.DefaultCacheBehavior
	allowed := toMethods(behavior.AllowedMethods)
	cached := toMethods(behavior.CachedMethods)
	if len(cached) == 0 {
		cached = allowed
	}

	cfg := &types.DistributionConfig{
		CallerReference:   aws.String(d.CallerReference),
		Comment:           aws.String(d.Comment),
		DefaultRootObject: aws.String(d.DefaultRootObject),
		Enabled:           aws.Bool(d.Enabled),
		IsIPV6Enabled:     aws.Bool(d.IPv6Enabled),
		HttpVersion:       types.HttpVersionHttp2,
		PriceClass:        types.PriceClass(d.PriceClass),
		Origins: &types.Origins{
			Items:    origins,
			Quantity: aws.Int32(int32(len(origins))),
		},
		Aliases: &types.Aliases{
			Items:    d.Aliases,
			Quantity: aws.Int32(int32(len(d.Aliases))),
		},
		CustomErrorResponses: &types.CustomErrorResponses{
			Items:    errorResponses,
			Quantity: aws.Int32(int32(len(errorResponses))),
		},
		DefaultCacheBehavior: &types.DefaultCacheBehavior{
			TargetOriginId:       aws.String(behavior.TargetOriginID),
			ViewerProtocolPolicy: types.ViewerProtocolPolicy(behavior.ViewerProtocolPolicy),
			Compress:             aws.Bool(behavior.Compress),
			CachePolicyId:        aws.String(behavior.CachePolicyID),
			AllowedMethods: &types.AllowedMethods{
				Items:    allowed,
				Quantity: aws.Int32(int32(len(allowed))),
				CachedMethods: &types.CachedMethods{
					Items:    cached,
					Quantity: aws.Int32(int32(len(cached))),
				},
			},
		},
	}

	if vc := d.ViewerCertificate; vc != nil {
		cfg.ViewerCertificate = &types.ViewerCertificate{
			CloudFrontDefaultCertificate: aws.Bool(vc.CloudFrontDefaultCertificate),
			MinimumProtocolVersion:       types.MinimumProtocolVersion(vc.MinimumProtocolVersion),
			SSLSupportMethod:             types.SSLSupportMethod(vc.SSLSupportMethod),
		}
		if vc.ACMCertificateARN != "" {
			cfg.ViewerCertificate.ACMCertificateArn = aws.String(vc.ACMCertificateARN)
		}
	}

	return cfg
}

func toMethods(methods []string) []types.Method {
	return lo.Map(methods, func(m string, _ int) types.Method { return types.Method(m) })
}

func fromDistribution(out *types.Distribution, etag *string) *cloudfront.Distribution {
	dist := &cloudfront.Distribution{
		DistributionID: aws.ToString(out.Id),
		ARN:            aws.ToString(out.ARN),
		DomainName:     aws.ToString(out.DomainName),
		Status:         aws.ToString(out.Status),
		ETag:           aws.ToString(etag),
	}

	cfg := out.DistributionConfig
	if cfg == nil {
		return dist
	}

	dist.CallerReference = aws.ToString(cfg.CallerReference)
	dist.Comment = aws.ToString(cfg.Comment)
	dist.DefaultRootObject = aws.ToString(cfg.DefaultRootObject)
	dist.Enabled = aws.ToBool(cfg.Enabled)
	dist.IPv6Enabled = aws.ToBool(cfg.IsIPV6Enabled)
	dist.PriceClass = string(cfg.PriceClass)
	if cfg.Aliases != nil {
		dist.Aliases = cfg.Aliases.Items
	}
	if cfg.Origins != nil {
		dist.Origins = lo.Map(cfg.Origins.Items, func(o types.Origin, _ int) cloudfront.Origin {
			return cloudfront.Origin{
				ID:         aws.ToString(o.Id),
				DomainName: aws.ToString(o.DomainName),
				OriginPath: aws.ToString(o.OriginPath),
			}
		})
	}
	if b := cfg.DefaultCacheBehavior; b != nil {
		dist.DefaultCacheBehavior = cloudfront.CacheBehavior{
			TargetOriginID:       aws.ToString(b.TargetOriginId),
			ViewerProtocolPolicy: string(b.ViewerProtocolPolicy),
			Compress:             aws.ToBool(b.Compress),
			CachePolicyID:        aws.ToString(b.CachePolicyId),
		}
		if b.AllowedMethods != nil {
			dist.DefaultCacheBehavior.AllowedMethods = lo.Map(b.AllowedMethods.Items, func(m types.Method, _ int) string { return string(m) })
		}
	}
	if cfg.CustomErrorResponses != nil {
		dist.CustomErrorResponses = lo.Map(cfg.CustomErrorResponses.Items, func(r types.CustomErrorResponse, _ int) cloudfront.CustomErrorResponse {
			return cloudfront.CustomErrorResponse{
				ErrorCode:          aws.ToInt32(r.ErrorCode),
				ResponsePagePath:   aws.ToString(r.ResponsePagePath),
				ResponseCode:       aws.ToString(r.ResponseCode),
				ErrorCachingMinTTL: aws.ToInt64(r.ErrorCachingMinTTL),
			}
		})
	}
	if vc := cfg.ViewerCertificate; vc != nil {
		dist.ViewerCertificate = &cloudfront.ViewerCertificate{
			ACMCertificateARN:            aws.ToString(vc.ACMCertificateArn),
			CloudFrontDefaultCertificate: aws.ToBool(vc.CloudFrontDefaultCertificate),
			MinimumProtocolVersion:       string(vc.MinimumProtocolVersion),
			SSLSupportMethod:             string(vc.SSLSupportMethod),
		}
	}

	return dist
}

func fromSummary(s types.DistributionSummary) *cloudfront.Distribution {
	dist := &cloudfront.Distribution{
		DistributionID: aws.ToString(s.Id),
		ARN:            aws.ToString(s.ARN),
		DomainName:     aws.ToString(s.DomainName),
		Status:         aws.ToString(s.Status),
		Comment:        aws.ToString(s.Comment),
		Enabled:        aws.ToBool(s.Enabled),
	}
	if s.Aliases != nil {
		dist.Aliases = s.Aliases.Items
	}
	return dist
}
