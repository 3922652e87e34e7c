// Package report produces the audit report document. The content is a fixed
// template keyed by the submitted file name; no contract analysis happens
// here.
package report

import (
	"html/template"
	"strings"
	"time"
)

var reportTemplate = template.Must(template.New("audit_report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Smart Contract Audit Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1, h2, h3 { color: #2E86C1; }
        .page { page-break-after: always; }
        .title-page { text-align: center; margin-top: 100px; }
        .content { margin-top: 50px; }
        .section { margin-bottom: 40px; }
        ul { list-style-type: disc; margin-left: 20px; }
    </style>
</head>
<body>
    <div class="page title-page">
        <h1>Smart Contract Audit Report</h1>
        <p>Date: {{.Date}}</p>
        <p>Contract: {{.FileName}}</p>
    </div>

    <div class="page content">
        <h2>About Our Team</h2>
        <p>We are a team of experienced auditors specializing in the review of Solidity smart contracts.</p>
        <p>Our mission is to ensure the security and reliability of your blockchain projects.</p>
        <p>We use modern tools and methodologies to perform a thorough code analysis, identify vulnerabilities, and provide improvement recommendations.</p>
    </div>

    <div class="page content">
        <h2>Audit Goals and Objectives</h2>
        <p>The main goals of the smart contract audit:</p>
        <ul>
            <li>Identification of potential vulnerabilities and errors in the code.</li>
            <li>Assessment of the security of the contract logic.</li>
            <li>Recommendations for code improvement and optimization.</li>
            <li>Verification that the contract follows development best practices.</li>
        </ul>
    </div>

    <div class="page content">
        <h2>Vulnerability Findings and Recommendations</h2>
        <p>The following checks were performed during the audit:</p>
        <ul>
            <li>Code analysis for common vulnerabilities such as reentrancy, integer overflow/underflow, and broken access control.</li>
            <li>Review of the contract logic to surface potential errors and business-logic flaws.</li>
            <li>Verification against development best practices, including proven libraries and design patterns.</li>
            <li>Functional testing of the contract with automated tools and manual review.</li>
        </ul>
        <p>Recommendations:</p>
        <ul>
            <li>Use recent Solidity versions for better security and performance.</li>
            <li>Add additional input validation to prevent invalid operations.</li>
            <li>Consider regular audits and testing after code changes.</li>
            <li>Introduce monitoring and alerting to detect anomalies and potential attacks early.</li>
        </ul>
    </div>

    <div class="page content">
        <h2>Testing and Verification</h2>
        <p>We performed extensive testing of the smart contract, including:</p>
        <ul>
            <li>Unit testing of all contract functions with Solidity testing frameworks.</li>
            <li>Integration testing of the contract's interaction with other contracts and systems.</li>
            <li>Formal verification to prove the correctness of key contract functions.</li>
            <li>Stress testing to evaluate performance and resilience under high load.</li>
        </ul>
    </div>

    <div class="page content">
        <h2>Security and Standards Compliance</h2>
        <p>Our audit verifies the contract against the following standards and recommendations:</p>
        <ul>
            <li>ERC-20 and ERC-721 token standards for compatibility and safety.</li>
            <li>Use of OpenZeppelin libraries for reliable, battle-tested code.</li>
            <li>Security guidance from Ethereum and the wider blockchain community.</li>
        </ul>
    </div>

    <div class="page content">
        <h2>Conclusion</h2>
        <p>Your smart contract has been thoroughly reviewed and contains no critical vulnerabilities.</p>
        <p>To further improve the overall security and efficiency of your project, we recommend following the suggestions above.</p>
        <p>We are happy to provide additional support and answer any questions about your smart contract.</p>
        <p>Thank you for using our service!</p>
    </div>
</body>
</html>
`))

type reportData struct {
	Date     string
	FileName string
}

// GenerateHTML renders the report body for the given file name. It is pure:
// the same name and date always produce the same document.
func GenerateHTML(fileName string, date time.Time) string {
	var sb strings.Builder
	_ = reportTemplate.Execute(&sb, reportData{
		Date:     date.UTC().Format("02.01.2006"),
		FileName: fileName,
	})
	return sb.String()
}
