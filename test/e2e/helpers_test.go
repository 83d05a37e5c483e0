package e2e_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	. "github.com/onsi/gomega"

	siteaws "github.com/a9b3/aws-site-deploy/pkg/aws"
	"github.com/a9b3/aws-site-deploy/pkg/cli"
)

// settings returns LocalStack's fixed credentials, or the default chain for
// real AWS.
func settings() siteaws.Settings {
	if awsEndpoint == "" {
		return siteaws.Settings{Region: siteaws.CertificateRegion}
	}
	return siteaws.Settings{
		Region:          siteaws.CertificateRegion,
		Endpoint:        awsEndpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}
}

// rootDomain returns the domain sites are deployed under. On LocalStack a
// fresh hosted zone is created for it.
func rootDomain() string {
	if d := os.Getenv("E2E_ROOT_DOMAIN"); d != "" {
		return d
	}
	domain := fmt.Sprintf("e2e-%d.test", time.Now().UnixNano())
	if awsEndpoint != "" {
		_, err := route53.NewFromConfig(awsCfg).CreateHostedZone(ctx, &route53.CreateHostedZoneInput{
			Name:            aws.String(domain),
			CallerReference: aws.String(domain),
		})
		Expect(err).NotTo(HaveOccurred())
	}
	return domain
}

// writeSite creates a site with an index page and a stylesheet.
func writeSite(dir, title string) {
	Expect(os.MkdirAll(filepath.Join(dir, "css"), 0o755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>"+title+"</h1>"), 0o600)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("h1{color:red}"), 0o600)).To(Succeed())
}

// run runs the CLI with the suite's AWS settings and returns its output.
// Against real AWS the process environment is used as is.
func run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	var env map[string]string
	if s := settings(); s.Endpoint != "" {
		env = map[string]string{
			"AWS_REGION":            s.Region,
			"AWS_ENDPOINT":          s.Endpoint,
			"AWS_ACCESS_KEY_ID":     s.AccessKeyID,
			"AWS_SECRET_ACCESS_KEY": s.SecretAccessKey,
		}
	}

	c := &cli.CLI{
		Stdout:      &stdout,
		Stderr:      &stderr,
		Environ:     env,
		NewDeployer: cli.NewAWSDeployer,
	}
	err := c.Run(ctx, append([]string{"aws-site-deploy"}, args...))
	return stdout.String(), err
}

// objectBody reads key from bucket.
func objectBody(bucket, key string) string {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.UsePathStyle = awsEndpoint != "" })
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	Expect(err).NotTo(HaveOccurred())
	defer out.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(out.Body)
	Expect(err).NotTo(HaveOccurred())
	return buf.String()
}
