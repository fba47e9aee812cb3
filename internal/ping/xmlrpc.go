package ping

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const methodName = "weblogUpdates.ping"

type methodCall struct {
	XMLName    xml.Name `xml:"methodCall"`
	MethodName string   `xml:"methodName"`
	Params     []param  `xml:"params>param"`
}

type param struct {
	Value string `xml:"value>string"`
}

type methodResponse struct {
	XMLName xml.Name `xml:"methodResponse"`
	Fault   []member `xml:"fault>value>struct>member"`
	Members []member `xml:"params>param>value>struct>member"`
}

type member struct {
	Name  string   `xml:"name"`
	Value rpcValue `xml:"value"`
}

type rpcValue struct {
	Boolean string `xml:"boolean"`
	String  string `xml:"string"`
	Int     string `xml:"int"`
	Text    string `xml:",chardata"`
}

func (v rpcValue) text() string {
	for _, s := range []string{v.String, v.Int, v.Boolean, v.Text} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func encodeCall(title, postURL string) ([]byte, error) {
	call := methodCall{
		MethodName: methodName,
		Params:     []param{{Value: title}, {Value: postURL}},
	}
	body, err := xml.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("encode ping: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// decodeResponse reports a fault or a true flerror member as an error. An
// empty or unparseable body is accepted; several services reply with HTML.
func decodeResponse(data []byte) error {
	var resp methodResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil
	}
	if len(resp.Fault) > 0 {
		reason := "unknown"
		for _, m := range resp.Fault {
			if m.Name == "faultString" {
				reason = m.Value.text()
			}
		}
		return fmt.Errorf("xml-rpc fault: %s", reason)
	}
	var (
		failed  bool
		message string
	)
	for _, m := range resp.Members {
		switch m.Name {
		case "flerror":
			v := m.Value.text()
			failed = v == "1" || strings.EqualFold(v, "true")
		case "message":
			message = m.Value.text()
		}
	}
	if failed {
		return fmt.Errorf("ping rejected: %s", message)
	}
	return nil
}
