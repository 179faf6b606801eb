package junit

import "encoding/xml"

// JUnit document model. Field order matters: it fixes attribute and child
// element order in the marshalled output.

type Testsuites struct {
	XMLName  xml.Name `xml:"testsuites"`
	Name     string   `xml:"name,attr"`
	Tests    int      `xml:"tests,attr"`
	Failures int      `xml:"failures,attr"`
	Errors   int      `xml:"errors,attr"`
	Skipped  int      `xml:"skipped,attr"`
	Time     string   `xml:"time,attr"`

	Suites []Testsuite `xml:"testsuite"`
}

type Testsuite struct {
	XMLName   xml.Name `xml:"testsuite"`
	Name      string   `xml:"name,attr"`
	Tests     int      `xml:"tests,attr"`
	Failures  int      `xml:"failures,attr"`
	Errors    int      `xml:"errors,attr"`
	Skipped   int      `xml:"skipped,attr"`
	Time      string   `xml:"time,attr"`
	Timestamp string   `xml:"timestamp,attr"`
	Hostname  string   `xml:"hostname,attr"`
	ID        int      `xml:"id,attr"`
	Package   string   `xml:"package,attr"`

	Properties []Property `xml:"properties>property"`
	Cases      []Testcase `xml:"testcase"`
	SystemOut  *Output    `xml:"system-out,omitempty"`
	SystemErr  *Output    `xml:"system-err,omitempty"`
}

type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type Testcase struct {
	XMLName   xml.Name `xml:"testcase"`
	Classname string   `xml:"classname,attr"`
	Name      string   `xml:"name,attr"`
	Time      string   `xml:"time,attr"`
	File      string   `xml:"file,attr,omitempty"`

	Failure   *Failure `xml:"failure,omitempty"`
	Error     *Failure `xml:"error,omitempty"`
	SkipNote  *Skipped `xml:"skipped,omitempty"`
	SystemOut *Output  `xml:"system-out,omitempty"`
	SystemErr *Output  `xml:"system-err,omitempty"`
}

// Failure carries both <failure> (assertion misses) and <error>
// (unexpected faults); only the element name differs.
type Failure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type Skipped struct {
	Message string `xml:"message,attr"`
}

type Output struct {
	Text string `xml:",chardata"`
}
